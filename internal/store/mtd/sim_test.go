package mtd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/maloquacious/dboot/internal/status"
)

// simFlash is an in-memory NOR partition. Writes may only clear bits and a
// slot may be programmed once per erase; violations fail the write.
type simFlash struct {
	data      []byte
	eraseSize int64
	programs  map[int64]int

	erases int
	syncs  int
	closed bool

	failEraseAt int64 // -1 disables
	shortWrite  bool
	shortRead   bool
}

func newSimFlash(size, eraseSize int) *simFlash {
	f := &simFlash{
		data:        make([]byte, size),
		eraseSize:   int64(eraseSize),
		programs:    map[int64]int{},
		failEraseAt: -1,
	}
	for i := range f.data {
		f.data[i] = 0xFF
	}
	return f
}

// preload programs words into consecutive slots from slot 0.
func (f *simFlash) preload(words ...status.Word) {
	for i, w := range words {
		copy(f.data[i*status.WordSize:], w.Encode())
		f.programs[int64(i*status.WordSize)]++
	}
}

func (f *simFlash) slot(i int) status.Word {
	return status.Word(status.ByteOrder.Uint16(f.data[i*status.WordSize:]))
}

func (f *simFlash) Geometry() Geometry {
	return Geometry{Size: int64(len(f.data)), EraseSize: f.eraseSize}
}

func (f *simFlash) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if f.shortRead && n > 0 {
		return n - 1, io.EOF
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *simFlash) WriteAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	if off+int64(len(p)) > int64(len(f.data)) {
		return 0, errors.New("write past end of partition")
	}
	if f.programs[off] > 0 {
		return 0, fmt.Errorf("slot at %#x programmed twice without erase", off)
	}
	for i, b := range p {
		if f.data[off+int64(i)]&b != b {
			return 0, fmt.Errorf("write at %#x sets bits without erase", off+int64(i))
		}
	}
	if f.shortWrite {
		f.data[off] &= p[0]
		f.programs[off]++
		return 1, nil
	}
	for i, b := range p {
		f.data[off+int64(i)] &= b
	}
	f.programs[off]++
	return len(p), nil
}

func (f *simFlash) Erase(off, length int64) error {
	if off%f.eraseSize != 0 || length != f.eraseSize {
		return fmt.Errorf("unaligned erase %#x+%#x", off, length)
	}
	if off == f.failEraseAt {
		return errors.New("simulated erase failure")
	}
	for i := off; i < off+length; i++ {
		f.data[i] = 0xFF
	}
	for k := range f.programs {
		if k >= off && k < off+length {
			delete(f.programs, k)
		}
	}
	f.erases++
	return nil
}

func (f *simFlash) Sync() error {
	f.syncs++
	return nil
}

func (f *simFlash) Close() error {
	f.closed = true
	return nil
}

// fakeSysfs lays out /sys/class/mtd style name files. names[i] == "" leaves
// mtd<i> absent.
func fakeSysfs(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for i, name := range names {
		if name == "" {
			continue
		}
		dir := filepath.Join(root, fmt.Sprintf("mtd%d", i))
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "name"), []byte(name+"\n"), 0644); err != nil {
			t.Fatalf("write name: %v", err)
		}
	}
	return root
}

// openSim returns an opened store whose device is f. Every Open of the
// store reopens the same simulated partition.
func openSim(t *testing.T, f *simFlash, def status.Word) *Store {
	t.Helper()
	s := New(Config{
		SysfsRoot: fakeSysfs(t, "u-boot", "dboot-status"),
		DevRoot:   "/dev",
		Default:   def,
	})
	s.openDevice = func(path string) (Device, error) {
		if path != "/dev/mtd1" {
			t.Fatalf("opened %s, want /dev/mtd1", path)
		}
		f.closed = false
		return f, nil
	}
	if err := s.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
