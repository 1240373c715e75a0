package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/maloquacious/dboot/internal/logger"
	"github.com/maloquacious/dboot/internal/status"
	"github.com/maloquacious/dboot/internal/store"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the boot record in a SQLite file so the tool can run
// on hosts without boot status hardware. It implements store.SchemaStore.
type SQLiteStore struct {
	dbPath         string
	db             *sql.DB
	expectedSchema string
	log            logger.Logger
}

var _ store.SchemaStore = (*SQLiteStore)(nil)

// New creates a new SQLiteStore.
func New(dbPath string, expectedSchema string, log logger.Logger) *SQLiteStore {
	return &SQLiteStore{
		dbPath:         dbPath,
		expectedSchema: expectedSchema,
		log:            logger.OrDiscard(log),
	}
}

func (s *SQLiteStore) Name() string {
	return "sqlite"
}

func (s *SQLiteStore) Capabilities() store.Capabilities {
	return store.Capabilities{Descriptions: true}
}

// open opens the SQLite database with safe defaults without checking the schema.
func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("%w: failed to open database: %w", store.ErrDeviceOpenFailed, err)
	}

	// Apply safe defaults
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fmt.Errorf("%w: failed to set pragma %q: %w", store.ErrDeviceOpenFailed, pragma, err)
		}
	}

	s.db = db
	return nil
}

// Create opens (creating if needed) the database without requiring a schema.
// Used before InitSchema and CheckState.
func (s *SQLiteStore) Create() error {
	return s.open()
}

// Open opens an existing, initialized database. A database that is missing
// or not at the expected schema version is refused with store.ErrSchema.
func (s *SQLiteStore) Open() error {
	exists, err := store.CheckExists(s.dbPath)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrDeviceOpenFailed, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s does not exist, run 'dboot db create'", store.ErrDeviceNotFound, s.dbPath)
	}
	if err := s.open(); err != nil {
		return err
	}

	state, err := s.CheckState()
	if err != nil {
		s.Close()
		return err
	}
	if state != store.StateReady {
		s.Close()
		return fmt.Errorf("%w: %s is %s", store.ErrSchema, s.dbPath, state)
	}
	s.log.Debug("sqlite: opened %s (schema %s)", s.dbPath, s.expectedSchema)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("%w: failed to close database: %w", store.ErrIO, err)
	}
	return nil
}

// InitSchema creates the schema and seeds the boot record with status
// 0x0000 and empty descriptions.
func (s *SQLiteStore) InitSchema(version string) error {
	if s.db == nil {
		return store.ErrNotInitialized
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(initialSchema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, strftime('%s', 'now'))`, version)
	if err != nil {
		return fmt.Errorf("failed to insert schema version: %w", err)
	}

	_, err = tx.Exec(`INSERT OR IGNORE INTO boot_record (id, status, updated_at) VALUES (1, 0, strftime('%s', 'now'))`)
	if err != nil {
		return fmt.Errorf("failed to seed boot record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("sqlite: initialized %s at schema %s", s.dbPath, version)
	return nil
}

// CheckState returns the current state of the datastore.
func (s *SQLiteStore) CheckState() (store.StoreState, error) {
	if s.db == nil {
		return store.StateMissing, store.ErrNotInitialized
	}

	// Check if schema_migrations table exists
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('schema_migrations', 'boot_record')`).Scan(&count)
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to check schema tables: %w", err)
	}

	if count < 2 {
		return store.StateUninitialized, nil
	}

	version, err := s.GetSchemaVersion()
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to get schema version: %w", err)
	}

	if version != s.expectedSchema {
		return store.StateVersionMismatch, nil
	}

	return store.StateReady, nil
}

// GetSchemaVersion returns the current schema version from the database.
func (s *SQLiteStore) GetSchemaVersion() (string, error) {
	if s.db == nil {
		return "", store.ErrNotInitialized
	}

	var version string
	err := s.db.QueryRow(`SELECT version FROM schema_migrations ORDER BY applied_at DESC LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}

	return version, nil
}

func (s *SQLiteStore) GetStatus() (status.Word, error) {
	if s.db == nil {
		return 0, store.ErrNotInitialized
	}

	var v int64
	err := s.db.QueryRow(`SELECT status FROM boot_record WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: boot record missing", store.ErrSchema)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: failed to query status: %w", store.ErrIO, err)
	}
	return status.Word(v), nil
}

func (s *SQLiteStore) SetStatus(w status.Word) error {
	if s.db == nil {
		return store.ErrNotInitialized
	}
	return s.update("status", int64(w))
}

func (s *SQLiteStore) GetDescription(slot status.Slot) (string, error) {
	if s.db == nil {
		return "", store.ErrNotInitialized
	}
	if !slot.Valid() {
		return "", fmt.Errorf("%w: %v", store.ErrInvalidSlot, slot)
	}

	var text string
	err := s.db.QueryRow(`SELECT ` + slotColumns[slot] + ` FROM boot_record WHERE id = 1`).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: boot record missing", store.ErrSchema)
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to query %s: %w", store.ErrIO, slot, err)
	}
	return text, nil
}

// SetDescription stores text as the direct record would: truncated to
// status.DescriptionMaxChars and cut at the first NUL.
func (s *SQLiteStore) SetDescription(slot status.Slot, text string) error {
	if s.db == nil {
		return store.ErrNotInitialized
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidSlot, slot)
	}
	return s.update(slotColumns[slot], status.NormalizeDescription(text))
}

// update sets one boot_record column; column names come from this package only.
func (s *SQLiteStore) update(column string, value any) error {
	res, err := s.db.Exec(`UPDATE boot_record SET `+column+` = ?, updated_at = strftime('%s', 'now') WHERE id = 1`, value)
	if err != nil {
		return fmt.Errorf("%w: failed to update %s: %w", store.ErrIO, column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to update %s: %w", store.ErrIO, column, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: boot record missing", store.ErrSchema)
	}
	return nil
}
