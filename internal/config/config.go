package config

import (
	"fmt"
	"os"

	"github.com/maloquacious/dboot/internal/store"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in the backend setting.
const (
	BackendMTD    = "mtd"
	BackendNVRAM  = "nvram"
	BackendSQLite = "sqlite"
)

// DefaultPath is read when no --config is given and the file exists.
const DefaultPath = "/etc/dboot.yaml"

type Config struct {
	// Backend selects exactly one store: mtd, nvram or sqlite.
	Backend string       `yaml:"backend"`
	Log     LogConfig    `yaml:"log"`
	MTD     MTDConfig    `yaml:"mtd"`
	NVRAM   NVRAMConfig  `yaml:"nvram"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Syslog bool   `yaml:"syslog"`
}

// ---- MTD ----

type MTDConfig struct {
	Name      string `yaml:"name"`
	SysfsRoot string `yaml:"sysfs_root"`
	DevRoot   string `yaml:"dev_root"`

	// DefaultStatus is reported while the log is still empty.
	// Any ParseWord form; 0xffff is rejected.
	DefaultStatus string `yaml:"default_status"`
}

// ---- NVRAM ----

type NVRAMConfig struct {
	Path string `yaml:"path"`
}

// ---- SQLITE ----

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendMTD,
		Log:     LogConfig{Level: "info"},
		MTD: MTDConfig{
			Name:          store.DefaultMTDName,
			SysfsRoot:     "/sys/class/mtd",
			DevRoot:       "/dev",
			DefaultStatus: "0x0000",
		},
		NVRAM:  NVRAMConfig{Path: store.DefaultNVRAMDevice},
		SQLite: SQLiteConfig{Path: store.GetDBPath(".")},
	}
}

// Load reads a YAML file over the built-in defaults. Keys absent from the
// file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
