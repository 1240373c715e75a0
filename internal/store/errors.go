package store

import "errors"

// Sentinel errors returned by the backends. Backends wrap them with %w,
// together with the underlying system error when there is one, so callers
// can test with errors.Is and still reach the errno with errors.As.
var (
	// ErrDeviceNotFound is returned when no device exposes the expected name.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceOpenFailed is returned when the device exists but cannot be opened.
	ErrDeviceOpenFailed = errors.New("device open failed")

	// ErrShortRead is returned when a read returned fewer bytes than requested.
	ErrShortRead = errors.New("short read")

	// ErrPartialWrite is returned when a write stored fewer bytes than requested.
	ErrPartialWrite = errors.New("partial write")

	// ErrCorruptLog is returned when the flash log violates its layout.
	ErrCorruptLog = errors.New("corrupt status log")

	// ErrEraseFailed is returned when erasing the log region fails.
	ErrEraseFailed = errors.New("erase failed")

	// ErrIO is returned for any other seek, read, write or sync failure.
	ErrIO = errors.New("i/o error")

	// ErrNotInitialized is returned when a store is used before Open.
	ErrNotInitialized = errors.New("store not initialized")

	// ErrNoCursor is returned by a flash SetStatus with no prior GetStatus.
	ErrNoCursor = errors.New("no write position: GetStatus was not called")

	// ErrReservedWord is returned when storing the erased encoding on flash.
	ErrReservedWord = errors.New("status word 0xffff is reserved")

	// ErrInvalidSlot is returned for an unknown description slot.
	ErrInvalidSlot = errors.New("invalid description slot")

	// ErrSchema is returned when a schema-backed store is not ready.
	ErrSchema = errors.New("datastore schema not ready")
)
