package config

import "strings"

// Normalize applies post-load normalization.
// It is allowed to mutate configuration.
// It MUST be called before Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.MTD.Name = strings.TrimSpace(cfg.MTD.Name)
	cfg.MTD.DefaultStatus = strings.TrimSpace(cfg.MTD.DefaultStatus)

	// "emulation" and "file" are accepted spellings of the host backend
	switch cfg.Backend {
	case "emulation", "file":
		cfg.Backend = BackendSQLite
	}
}
