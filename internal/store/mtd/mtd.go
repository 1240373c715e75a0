package mtd

import (
	"fmt"

	"github.com/maloquacious/dboot/internal/logger"
	"github.com/maloquacious/dboot/internal/status"
	"github.com/maloquacious/dboot/internal/store"
)

// Config selects the MTD partition and the value reported for an empty log.
type Config struct {
	// Name is the partition name exposed in sysfs.
	Name string

	SysfsRoot string
	DevRoot   string

	// Default is returned by GetStatus while the log holds no value.
	// Seeding a sane default is the caller's job.
	Default status.Word

	Logger logger.Logger
}

// Store keeps the status word as an append-only log of 2-byte slots on a
// raw flash partition. It does not persist descriptions.
type Store struct {
	cfg        Config
	log        logger.Logger
	openDevice func(path string) (Device, error)

	dev       Device
	path      string
	cursor    Cursor
	hasCursor bool
}

var _ store.Store = (*Store)(nil)

// New creates a flash log store. Nothing is opened until Open.
func New(cfg Config) *Store {
	if cfg.Name == "" {
		cfg.Name = store.DefaultMTDName
	}
	if cfg.SysfsRoot == "" {
		cfg.SysfsRoot = DefaultSysfsRoot
	}
	if cfg.DevRoot == "" {
		cfg.DevRoot = DefaultDevRoot
	}
	return &Store{
		cfg: cfg,
		log: logger.OrDiscard(cfg.Logger),
		openDevice: func(path string) (Device, error) {
			return OpenCharDevice(path)
		},
	}
}

func (s *Store) Name() string {
	return "mtd"
}

func (s *Store) Capabilities() store.Capabilities {
	return store.Capabilities{Descriptions: false}
}

// Path returns the device path picked by Open.
func (s *Store) Path() string {
	return s.path
}

// Open locates the partition by name and opens it read-write.
func (s *Store) Open() error {
	if s.dev != nil {
		return nil
	}

	path, err := Locate(s.cfg.SysfsRoot, s.cfg.DevRoot, s.cfg.Name)
	if err != nil {
		return err
	}

	dev, err := s.openDevice(path)
	if err != nil {
		return err
	}
	geo := dev.Geometry()
	if err := geo.validate(); err != nil {
		dev.Close()
		return fmt.Errorf("%w: %s: unusable geometry: %v", store.ErrCorruptLog, path, err)
	}

	s.dev = dev
	s.path = path
	s.hasCursor = false
	s.log.Debug("mtd: %q is %s (%d bytes, %d slots, erase block %d)",
		s.cfg.Name, path, geo.Size, geo.Size/status.WordSize, geo.EraseSize)
	return nil
}

// Close releases the device. Safe to call when Open failed or was never called.
func (s *Store) Close() error {
	if s.dev == nil {
		return nil
	}
	err := s.dev.Close()
	s.dev = nil
	s.hasCursor = false
	if err != nil {
		return fmt.Errorf("%w: closing %s: %w", store.ErrIO, s.path, err)
	}
	return nil
}

// GetStatus scans the log, compacting it when full, and remembers where
// the next SetStatus will write.
func (s *Store) GetStatus() (status.Word, error) {
	if s.dev == nil {
		return 0, store.ErrNotInitialized
	}

	region, err := ReadRegion(s.dev)
	if err != nil {
		return 0, err
	}
	res, err := Scan(region, s.cfg.Default)
	if err != nil {
		return 0, err
	}

	switch {
	case res.Full:
		s.log.Info("mtd: status log full, compacting %s", s.path)
		next, err := Compact(s.dev, res.Value)
		if err != nil {
			s.hasCursor = false
			return 0, err
		}
		res.Next = next
	case !res.Found:
		s.log.Warn("mtd: status log is empty, reporting default %v", res.Value)
	}

	s.cursor = res.Next
	s.hasCursor = true
	s.log.Debug("mtd: status %v, next slot %d", res.Value, res.Next.Slot())
	return res.Value, nil
}

// SetStatus appends w at the cursor left by the last GetStatus and syncs.
// When the previous append used the last slot, the log is rescanned (and
// so compacted) first.
func (s *Store) SetStatus(w status.Word) error {
	if s.dev == nil {
		return store.ErrNotInitialized
	}
	if w == status.Erased {
		return store.ErrReservedWord
	}
	if !s.hasCursor {
		return store.ErrNoCursor
	}

	if int64(s.cursor) >= s.dev.Geometry().Size {
		if _, err := s.GetStatus(); err != nil {
			return err
		}
	}

	next, err := Append(s.dev, s.cursor, w)
	if err != nil {
		// the slot may be half programmed; force a rescan before any retry
		s.hasCursor = false
		return err
	}
	s.log.Debug("mtd: wrote %v at slot %d", w, s.cursor.Slot())
	s.cursor = next
	return nil
}

// Cursor returns the next write position and whether one is established.
func (s *Store) Cursor() (Cursor, bool) {
	return s.cursor, s.hasCursor
}

// GetDescription always returns "": this backend is status-only.
func (s *Store) GetDescription(slot status.Slot) (string, error) {
	if !slot.Valid() {
		return "", fmt.Errorf("%w: %v", store.ErrInvalidSlot, slot)
	}
	return "", nil
}

// SetDescription accepts and drops the text: this backend is status-only.
func (s *Store) SetDescription(slot status.Slot, text string) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidSlot, slot)
	}
	return nil
}
