package config

import (
	"fmt"

	"github.com/maloquacious/dboot/internal/logger"
	"github.com/maloquacious/dboot/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}

	switch cfg.Backend {
	case BackendMTD:
		if cfg.MTD.Name == "" {
			return fmt.Errorf("mtd.name must not be empty")
		}
		if cfg.MTD.SysfsRoot == "" || cfg.MTD.DevRoot == "" {
			return fmt.Errorf("mtd.sysfs_root and mtd.dev_root must not be empty")
		}
		if _, err := cfg.MTD.Default(); err != nil {
			return err
		}
	case BackendNVRAM:
		if cfg.NVRAM.Path == "" {
			return fmt.Errorf("nvram.path must not be empty")
		}
	case BackendSQLite:
		if cfg.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path must not be empty")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)",
			cfg.Backend, BackendMTD, BackendNVRAM, BackendSQLite)
	}

	return nil
}

// Default parses DefaultStatus. An empty value means 0x0000.
func (c MTDConfig) Default() (status.Word, error) {
	if c.DefaultStatus == "" {
		return 0, nil
	}
	w, err := status.ParseWord(c.DefaultStatus)
	if err != nil {
		return 0, fmt.Errorf("mtd.default_status: %w", err)
	}
	if w == status.Erased {
		return 0, fmt.Errorf("mtd.default_status: %v is the erased encoding", w)
	}
	return w, nil
}
