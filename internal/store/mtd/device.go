package mtd

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/maloquacious/dboot/internal/store"
	"golang.org/x/sys/unix"
)

// Device is the raw flash region the status log lives in. Writes can only
// clear bits; only Erase sets them back, a whole erase block at a time.
type Device interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Geometry returns the region size and erase granularity.
	Geometry() Geometry

	// Erase resets length bytes starting at off to 0xFF. Both must be
	// multiples of the erase block size.
	Erase(off, length int64) error

	// Sync flushes pending writes to the medium.
	Sync() error
}

// Geometry describes an MTD region.
type Geometry struct {
	Size      int64 // total bytes
	EraseSize int64 // erase block size
}

func (g Geometry) validate() error {
	switch {
	case g.Size <= 0:
		return fmt.Errorf("region size %d", g.Size)
	case g.EraseSize <= 0:
		return fmt.Errorf("erase block size %d", g.EraseSize)
	case g.Size%g.EraseSize != 0:
		return fmt.Errorf("region size %d is not a multiple of erase block size %d", g.Size, g.EraseSize)
	}
	return nil
}

// MTD ioctl request numbers from include/uapi/mtd/mtd-abi.h. Stable kernel ABI.
const (
	// memGetInfo encodes _IOR('M', 1, struct mtd_info_user), 32 bytes.
	memGetInfo = 0x80204d01

	// memErase encodes _IOW('M', 2, struct erase_info_user), 8 bytes.
	memErase = 0x40084d02
)

// mtdInfoUser mirrors struct mtd_info_user.
type mtdInfoUser struct {
	typ       uint8
	_         [3]byte
	flags     uint32
	size      uint32
	eraseSize uint32
	writeSize uint32
	oobSize   uint32
	padding   uint64
}

// eraseInfoUser mirrors struct erase_info_user.
type eraseInfoUser struct {
	start  uint32
	length uint32
}

func ioctl(fd int, request uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), request, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// CharDevice is an MTD character device such as /dev/mtd3.
type CharDevice struct {
	fd   int
	path string
	geo  Geometry
}

// OpenCharDevice opens an MTD character device read-write and queries its
// geometry with MEMGETINFO.
func OpenCharDevice(path string) (*CharDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", store.ErrDeviceOpenFailed, path, err)
	}

	var info mtdInfoUser
	if err := ioctl(fd, memGetInfo, unsafe.Pointer(&info)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: MEMGETINFO on %s: %w", store.ErrIO, path, err)
	}

	return &CharDevice{
		fd:   fd,
		path: path,
		geo: Geometry{
			Size:      int64(info.size),
			EraseSize: int64(info.eraseSize),
		},
	}, nil
}

func (d *CharDevice) Geometry() Geometry {
	return d.geo
}

// ReadAt reads len(p) bytes at off, issuing as many preads as needed.
func (d *CharDevice) ReadAt(p []byte, off int64) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Pread(d.fd, p[total:], off+int64(total))
		if err != nil {
			return total, fmt.Errorf("pread at offset %d: %w", off+int64(total), err)
		}
		if n == 0 {
			return total, io.EOF
		}
		total += n
	}
	return total, nil
}

// WriteAt issues a single pwrite. A short count is returned as-is so the
// caller can tell a partial write from a failed one.
func (d *CharDevice) WriteAt(p []byte, off int64) (int, error) {
	n, err := unix.Pwrite(d.fd, p, off)
	if err != nil {
		return n, fmt.Errorf("pwrite at offset %d: %w", off, err)
	}
	return n, nil
}

func (d *CharDevice) Erase(off, length int64) error {
	req := eraseInfoUser{start: uint32(off), length: uint32(length)}
	if err := ioctl(d.fd, memErase, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("MEMERASE %#x+%#x: %w", off, length, err)
	}
	return nil
}

func (d *CharDevice) Sync() error {
	return unix.Fsync(d.fd)
}

// Close is idempotent.
func (d *CharDevice) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
