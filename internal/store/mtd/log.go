package mtd

import (
	"errors"
	"fmt"
	"io"

	"github.com/maloquacious/dboot/internal/status"
	"github.com/maloquacious/dboot/internal/store"
)

// ErrLogFull is returned by Append when the cursor is past the last slot.
// The store compacts through a fresh scan instead of letting this escape.
var ErrLogFull = errors.New("status log is full")

// Cursor is the byte offset of the next slot to write.
type Cursor int64

// Slot returns the slot index the cursor points at.
func (c Cursor) Slot() int64 {
	return int64(c) / status.WordSize
}

// ScanResult is the state recovered from the log region.
type ScanResult struct {
	// Value is the last written word, or the default when Found is false.
	Value status.Word

	// Found is false when slot 0 is erased.
	Found bool

	// Full is true when no slot is erased. The region must be compacted
	// before the next append.
	Full bool

	// Next is the first erased slot. It equals the region size when Full.
	Next Cursor
}

// Scan recovers the current value from a log region in two phases. Phase
// one walks written slots up to the first erased one. Phase two checks
// that everything after it is erased too, since an append there would be
// read back as state on the next scan.
// No IO. No side effects.
func Scan(region []byte, def status.Word) (ScanResult, error) {
	if len(region) == 0 || len(region)%status.WordSize != 0 {
		return ScanResult{}, fmt.Errorf("%w: region of %d bytes is not a whole number of slots",
			store.ErrCorruptLog, len(region))
	}

	res := ScanResult{Value: def, Full: true, Next: Cursor(len(region))}

	for off := 0; off < len(region); off += status.WordSize {
		w := status.Word(status.ByteOrder.Uint16(region[off:]))
		if w == status.Erased {
			res.Full = false
			res.Next = Cursor(off)
			break
		}
		res.Value = w
		res.Found = true
	}
	if res.Full {
		return res, nil
	}

	for off := int(res.Next) + status.WordSize; off < len(region); off += status.WordSize {
		w := status.Word(status.ByteOrder.Uint16(region[off:]))
		if w != status.Erased {
			return ScanResult{}, fmt.Errorf("%w: slot %d holds %v after erased slot %d",
				store.ErrCorruptLog, off/status.WordSize, w, res.Next.Slot())
		}
	}
	return res, nil
}

// ReadRegion reads the whole log region.
func ReadRegion(dev Device) ([]byte, error) {
	size := dev.Geometry().Size
	buf := make([]byte, size)
	n, err := dev.ReadAt(buf, 0)
	if int64(n) < size {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: reading status log: %w", store.ErrIO, err)
		}
		return nil, fmt.Errorf("%w: %w: read %d of %d bytes", store.ErrCorruptLog, store.ErrShortRead, n, size)
	}
	return buf, nil
}

// Append writes w into the slot at the cursor, syncs, and returns the
// cursor of the following slot. The slot must be erased.
func Append(dev Device, at Cursor, w status.Word) (Cursor, error) {
	if w == status.Erased {
		return at, store.ErrReservedWord
	}
	if int64(at)+status.WordSize > dev.Geometry().Size {
		return at, fmt.Errorf("%w: slot %d", ErrLogFull, at.Slot())
	}

	n, err := dev.WriteAt(w.Encode(), int64(at))
	switch {
	case n == 0 && err != nil:
		return at, fmt.Errorf("%w: writing %v at slot %d: %w", store.ErrIO, w, at.Slot(), err)
	case n != status.WordSize:
		return at, fmt.Errorf("%w: wrote %d of %d bytes of %v at slot %d",
			store.ErrPartialWrite, n, status.WordSize, w, at.Slot())
	case err != nil:
		return at, fmt.Errorf("%w: writing %v at slot %d: %w", store.ErrIO, w, at.Slot(), err)
	}

	if err := dev.Sync(); err != nil {
		return at, fmt.Errorf("%w: syncing status log: %w", store.ErrIO, err)
	}
	return at + status.WordSize, nil
}

// Compact erases every erase block of the region in order and writes w back
// into slot 0. A failed erase is not retried and leaves the region partly
// erased; the next scan either finds w in slot 0 or reports corruption.
func Compact(dev Device, w status.Word) (Cursor, error) {
	geo := dev.Geometry()
	for off := int64(0); off < geo.Size; off += geo.EraseSize {
		if err := dev.Erase(off, geo.EraseSize); err != nil {
			return 0, fmt.Errorf("%w: erase block at %#x: %w", store.ErrEraseFailed, off, err)
		}
	}
	return Append(dev, 0, w)
}
