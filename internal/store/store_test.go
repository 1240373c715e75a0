package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckExists(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name      string
		setup     func(string) error
		wantExist bool
		wantError bool
	}{
		{
			name: "file exists",
			setup: func(path string) error {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				return f.Close()
			},
			wantExist: true,
			wantError: false,
		},
		{
			name: "file does not exist",
			setup: func(path string) error {
				return nil
			},
			wantExist: false,
			wantError: false,
		},
		{
			name: "path is directory",
			setup: func(path string) error {
				return os.Mkdir(path, 0755)
			},
			wantExist: false,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDir := filepath.Join(tmpDir, tt.name)
			if err := os.Mkdir(testDir, 0755); err != nil {
				t.Fatalf("failed to create test dir: %v", err)
			}
			path := GetDBPath(testDir)

			if err := tt.setup(path); err != nil {
				t.Fatalf("setup failed: %v", err)
			}

			exists, err := CheckExists(path)

			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if exists != tt.wantExist {
				t.Errorf("got exists=%v, want %v", exists, tt.wantExist)
			}
		})
	}
}

func TestGetDBPath(t *testing.T) {
	if got := GetDBPath("/var/lib/dboot"); got != "/var/lib/dboot/dboot.db" {
		t.Errorf("got %q", got)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ErrDeviceNotFound, ErrDeviceOpenFailed, ErrShortRead, ErrPartialWrite,
		ErrCorruptLog, ErrEraseFailed, ErrIO, ErrNotInitialized, ErrNoCursor,
		ErrReservedWord, ErrInvalidSlot, ErrSchema,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}
