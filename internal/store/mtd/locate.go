package mtd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maloquacious/dboot/internal/store"
)

const (
	// MaxDevices is how many mtd<N> nodes are probed.
	MaxDevices = 32

	DefaultSysfsRoot = "/sys/class/mtd"
	DefaultDevRoot   = "/dev"
)

// Locate finds the MTD partition whose sysfs name property equals name and
// returns its character device path. Nodes are probed in numeric order and
// the first match wins; missing or unreadable nodes are skipped.
func Locate(sysfsRoot, devRoot, name string) (string, error) {
	for i := 0; i < MaxDevices; i++ {
		node := fmt.Sprintf("mtd%d", i)
		data, err := os.ReadFile(filepath.Join(sysfsRoot, node, "name"))
		if err != nil {
			continue
		}
		if strings.TrimRight(string(data), "\n") == name {
			return filepath.Join(devRoot, node), nil
		}
	}
	return "", fmt.Errorf("%w: no mtd device named %q under %s", store.ErrDeviceNotFound, name, sysfsRoot)
}
