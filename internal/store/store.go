package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultMTDName is the MTD partition name holding the status log.
	DefaultMTDName = "dboot-status"

	// DefaultNVRAMDevice is the character device holding the direct record.
	DefaultNVRAMDevice = "/dev/dboot_status"

	// DefaultDBFile is the emulation database file name.
	DefaultDBFile = "dboot.db"
)

// CheckExists verifies if a device node or datastore file exists at path.
// Returns true if it exists, false otherwise.
func CheckExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("path is a directory, expected file or device: %s", path)
	}
	return true, nil
}

// GetDBPath returns the full path to the emulation database file.
func GetDBPath(storePath string) string {
	return filepath.Join(storePath, DefaultDBFile)
}
