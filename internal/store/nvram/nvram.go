package nvram

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/maloquacious/dboot/internal/logger"
	"github.com/maloquacious/dboot/internal/status"
	"github.com/maloquacious/dboot/internal/store"
)

// Device is a random-access device that can overwrite any byte range in
// place, such as a battery-backed memory exposed as a character device.
type Device interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
}

// Config points the store at its device.
type Config struct {
	Path   string
	Logger logger.Logger
}

// Store keeps the status word and descriptions in a fixed record on a
// random-access device. Reads are served from a shadow copy loaded by Open;
// every write goes to the device first and updates the shadow only after
// the full field was written.
type Store struct {
	path       string
	log        logger.Logger
	openDevice func(path string) (Device, error)

	dev    Device
	shadow status.Record
}

var _ store.Store = (*Store)(nil)

// New creates a direct record store. Nothing is opened until Open.
func New(cfg Config) *Store {
	if cfg.Path == "" {
		cfg.Path = store.DefaultNVRAMDevice
	}
	return &Store{
		path: cfg.Path,
		log:  logger.OrDiscard(cfg.Logger),
		openDevice: func(path string) (Device, error) {
			return os.OpenFile(path, os.O_RDWR, 0)
		},
	}
}

func (s *Store) Name() string {
	return "nvram"
}

func (s *Store) Capabilities() store.Capabilities {
	return store.Capabilities{Descriptions: true}
}

// Open opens the device and reads the whole record into the shadow copy.
// On failure nothing is left open.
func (s *Store) Open() error {
	if s.dev != nil {
		return nil
	}

	dev, err := s.openDevice(s.path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", store.ErrDeviceOpenFailed, s.path, err)
	}
	s.dev = dev

	buf := make([]byte, status.RecordSize)
	n, err := dev.ReadAt(buf, 0)
	if n < status.RecordSize {
		s.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: reading %s: %w", store.ErrIO, s.path, err)
		}
		return fmt.Errorf("%w: %s: read %d of %d bytes", store.ErrShortRead, s.path, n, status.RecordSize)
	}

	rec, err := status.DecodeRecord(buf)
	if err != nil {
		s.Close()
		return fmt.Errorf("%w: %s: %w", store.ErrIO, s.path, err)
	}
	s.shadow = rec
	s.log.Debug("nvram: loaded record from %s, status %v", s.path, rec.Status)
	return nil
}

// Close releases the device. Safe to call when Open failed or was never called.
func (s *Store) Close() error {
	if s.dev == nil {
		return nil
	}
	err := s.dev.Close()
	s.dev = nil
	if err != nil {
		return fmt.Errorf("%w: closing %s: %w", store.ErrIO, s.path, err)
	}
	return nil
}

func (s *Store) GetStatus() (status.Word, error) {
	if s.dev == nil {
		return 0, store.ErrNotInitialized
	}
	return s.shadow.Status, nil
}

func (s *Store) SetStatus(w status.Word) error {
	if s.dev == nil {
		return store.ErrNotInitialized
	}
	if err := s.writeField("status", status.OffsetStatus, w.Encode()); err != nil {
		return err
	}
	s.shadow.Status = w
	s.log.Debug("nvram: status %v", w)
	return nil
}

func (s *Store) GetDescription(slot status.Slot) (string, error) {
	if s.dev == nil {
		return "", store.ErrNotInitialized
	}
	if !slot.Valid() {
		return "", fmt.Errorf("%w: %v", store.ErrInvalidSlot, slot)
	}
	return s.shadow.Description(slot), nil
}

// SetDescription writes the slot's whole field; text is truncated to
// status.DescriptionMaxChars and NUL-terminated.
func (s *Store) SetDescription(slot status.Slot, text string) error {
	if s.dev == nil {
		return store.ErrNotInitialized
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidSlot, slot)
	}
	field := status.EncodeDescription(text)
	if err := s.writeField(slot.String(), slot.Offset(), field); err != nil {
		return err
	}
	s.shadow.Descriptions[slot] = status.DecodeDescription(field)
	s.log.Debug("nvram: %s description %q", slot, s.shadow.Descriptions[slot])
	return nil
}

// writeField writes data at off and fails unless every byte was written.
func (s *Store) writeField(name string, off int, data []byte) error {
	n, err := s.dev.WriteAt(data, int64(off))
	switch {
	case n == 0 && err != nil:
		return fmt.Errorf("%w: writing %s field of %s: %w", store.ErrIO, name, s.path, err)
	case n != len(data):
		return fmt.Errorf("%w: %s field of %s: wrote %d of %d bytes", store.ErrPartialWrite, name, s.path, n, len(data))
	case err != nil:
		return fmt.Errorf("%w: writing %s field of %s: %w", store.ErrIO, name, s.path, err)
	}
	return nil
}
