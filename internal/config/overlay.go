package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. DBOOT_BACKEND.
const EnvPrefix = "dboot"

// Overlay keys. Each doubles as a flag name and, upper-cased with "-" as
// "_", an environment variable.
const (
	KeyConfig        = "config"
	KeyBackend       = "backend"
	KeyLogLevel      = "log-level"
	KeySyslog        = "syslog"
	KeyMTDName       = "mtd-name"
	KeyMTDSysfsRoot  = "mtd-sysfs-root"
	KeyMTDDevRoot    = "mtd-dev-root"
	KeyDefaultStatus = "default-status"
	KeyNVRAMPath     = "nvram-path"
	KeySQLitePath    = "sqlite-path"
)

// AddFlags registers the overlay flags on fs. Defaults are empty so an
// unset flag never hides the file or environment value.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "config file (default "+DefaultPath+" when present)")
	fs.String(KeyBackend, "", "store backend: mtd, nvram or sqlite")
	fs.String(KeyLogLevel, "", "log level: debug, info, warn, error")
	fs.Bool(KeySyslog, false, "log to syslog instead of stderr")
	fs.String(KeyMTDName, "", "mtd partition name to search for")
	fs.String(KeyMTDSysfsRoot, "", "sysfs directory listing mtd devices")
	fs.String(KeyMTDDevRoot, "", "directory holding mtd device nodes")
	fs.String(KeyDefaultStatus, "", "status reported while the mtd log is empty")
	fs.String(KeyNVRAMPath, "", "nvram record device")
	fs.String(KeySQLitePath, "", "sqlite emulation database")
}

// NewViper loads .env and .env.local, enables DBOOT_* environment lookup
// and binds fs so that flags win over the environment.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Apply copies every key set by flag or environment over cfg.
func Apply(cfg *Config, v *viper.Viper) {
	set := func(key string, dst *string) {
		if v.IsSet(key) {
			if s := v.GetString(key); s != "" {
				*dst = s
			}
		}
	}

	set(KeyBackend, &cfg.Backend)
	set(KeyLogLevel, &cfg.Log.Level)
	set(KeyMTDName, &cfg.MTD.Name)
	set(KeyMTDSysfsRoot, &cfg.MTD.SysfsRoot)
	set(KeyMTDDevRoot, &cfg.MTD.DevRoot)
	set(KeyDefaultStatus, &cfg.MTD.DefaultStatus)
	set(KeyNVRAMPath, &cfg.NVRAM.Path)
	set(KeySQLitePath, &cfg.SQLite.Path)

	if v.IsSet(KeySyslog) {
		cfg.Log.Syslog = v.GetBool(KeySyslog)
	}
}

// Resolve builds the effective configuration: defaults, then the config
// file, then environment, then flags. The result is normalized and validated.
func Resolve(v *viper.Viper) (Config, error) {
	cfg := Default()

	path := v.GetString(KeyConfig)
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	Apply(&cfg, v)
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
