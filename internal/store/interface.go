package store

import "github.com/maloquacious/dboot/internal/status"

// StoreState represents the initialization state of a schema-backed store.
type StoreState int

const (
	StateMissing         StoreState = iota // File doesn't exist
	StateUninitialized                     // File exists but no schema
	StateVersionMismatch                   // Schema exists but wrong version
	StateReady                             // Initialized and correct version
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version mismatch"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Capabilities describes what a backend can persist.
type Capabilities struct {
	// Descriptions is false for status-only backends. Their description
	// getters return "" and setters succeed without writing anything.
	Descriptions bool
}

// Store defines the boot status backend contract.
// Implementations are not safe for concurrent use; each value owns its
// device handle exclusively.
type Store interface {
	// Name identifies the backend in logs and CLI output
	Name() string

	// Capabilities reports what the backend persists
	Capabilities() Capabilities

	// Open acquires the device and loads whatever state the backend needs
	Open() error

	// Close releases the device. It is idempotent and safe after a failed Open.
	Close() error

	// GetStatus returns the current status word
	GetStatus() (status.Word, error)

	// SetStatus durably replaces the status word
	SetStatus(w status.Word) error

	// GetDescription returns the description text of a slot
	GetDescription(slot status.Slot) (string, error)

	// SetDescription replaces the description text of a slot
	SetDescription(slot status.Slot, text string) error
}

// SchemaStore is a Store with a versioned schema that must be created
// before use.
type SchemaStore interface {
	Store

	// InitSchema creates the schema and seeds the initial record
	InitSchema(version string) error

	// CheckState returns the current state of the datastore
	CheckState() (StoreState, error)

	// GetSchemaVersion returns the current schema version
	GetSchemaVersion() (string, error)
}
