package mtd

import (
	"errors"
	"testing"

	"github.com/maloquacious/dboot/internal/status"
	"github.com/maloquacious/dboot/internal/store"
)

func region(words ...status.Word) []byte {
	var b []byte
	for _, w := range words {
		b = append(b, w.Encode()...)
	}
	return b
}

func TestScan(t *testing.T) {
	const def status.Word = 0x0042
	e := status.Erased

	tests := []struct {
		name    string
		region  []byte
		want    ScanResult
		wantErr error
	}{
		{
			name:   "all erased returns default",
			region: region(e, e, e, e),
			want:   ScanResult{Value: def, Next: 0},
		},
		{
			name:   "last written slot wins",
			region: region(0x0001, 0x0002, 0x0003, e),
			want:   ScanResult{Value: 0x0003, Found: true, Next: 6},
		},
		{
			name:   "zero is a value",
			region: region(0x8000, 0x0000, e, e),
			want:   ScanResult{Value: 0x0000, Found: true, Next: 4},
		},
		{
			name:   "full region",
			region: region(0x0001, 0x0002, 0x0003, 0x0004),
			want:   ScanResult{Value: 0x0004, Found: true, Full: true, Next: 8},
		},
		{
			name:    "garbage after erased tail",
			region:  region(0x0001, e, e, 0x1234),
			wantErr: store.ErrCorruptLog,
		},
		{
			name:    "written slot after erased slot zero",
			region:  region(e, 0x0001, e, e),
			wantErr: store.ErrCorruptLog,
		},
		{
			name:    "odd size",
			region:  append(region(0x0001, e), 0xFF),
			wantErr: store.ErrCorruptLog,
		},
		{
			name:    "empty region",
			region:  nil,
			wantErr: store.ErrCorruptLog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scan(tt.region, def)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got err %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadRegionShortRead(t *testing.T) {
	f := newSimFlash(16, 8)
	f.shortRead = true

	_, err := ReadRegion(f)
	if !errors.Is(err, store.ErrCorruptLog) || !errors.Is(err, store.ErrShortRead) {
		t.Fatalf("got %v, want corrupt log + short read", err)
	}
}

func TestAppend(t *testing.T) {
	f := newSimFlash(8, 8)

	next, err := Append(f, 0, 0x1111)
	if err != nil || next != 2 {
		t.Fatalf("append: next=%d err=%v", next, err)
	}
	if f.syncs != 1 {
		t.Errorf("syncs = %d, want 1", f.syncs)
	}

	if _, err := Append(f, 2, status.Erased); !errors.Is(err, store.ErrReservedWord) {
		t.Errorf("erased word: got %v", err)
	}
	if _, err := Append(f, 8, 0x0001); !errors.Is(err, ErrLogFull) {
		t.Errorf("past end: got %v", err)
	}

	f.shortWrite = true
	if _, err := Append(f, 2, 0x2222); !errors.Is(err, store.ErrPartialWrite) {
		t.Errorf("short write: got %v", err)
	}
}

func TestCompact(t *testing.T) {
	f := newSimFlash(32, 8)
	f.preload(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16)

	next, err := Compact(f, 16)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if next != 2 {
		t.Errorf("next = %d, want 2", next)
	}
	if f.erases != 4 {
		t.Errorf("erases = %d, want 4", f.erases)
	}
	if f.slot(0) != 16 {
		t.Errorf("slot 0 = %v, want 16", f.slot(0))
	}
	for i := 1; i < 16; i++ {
		if f.slot(i) != status.Erased {
			t.Fatalf("slot %d = %v after compaction", i, f.slot(i))
		}
	}
}

func TestCompactEraseFailure(t *testing.T) {
	f := newSimFlash(16, 8)
	f.preload(1, 2, 3, 4, 5, 6, 7, 8)
	f.failEraseAt = 8

	if _, err := Compact(f, 8); !errors.Is(err, store.ErrEraseFailed) {
		t.Fatalf("got %v, want erase failure", err)
	}

	// first block erased, second still holds old slots
	region, err := ReadRegion(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := Scan(region, 0); !errors.Is(err, store.ErrCorruptLog) {
		t.Errorf("rescan after interrupted compaction: got %v, want corrupt log", err)
	}
}
