package main

import (
	"fmt"

	"github.com/maloquacious/dboot/internal/config"
	"github.com/maloquacious/dboot/internal/logger"
	"github.com/maloquacious/dboot/internal/store"
	"github.com/maloquacious/dboot/internal/store/mtd"
	"github.com/maloquacious/dboot/internal/store/nvram"
	"github.com/maloquacious/dboot/internal/store/sqlite"
	"github.com/spf13/cobra"
)

// newStore builds the one backend selected by configuration. Nothing is
// opened yet.
func newStore(cfg config.Config, log logger.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMTD:
		def, err := cfg.MTD.Default()
		if err != nil {
			return nil, err
		}
		return mtd.New(mtd.Config{
			Name:      cfg.MTD.Name,
			SysfsRoot: cfg.MTD.SysfsRoot,
			DevRoot:   cfg.MTD.DevRoot,
			Default:   def,
			Logger:    log,
		}), nil
	case config.BackendNVRAM:
		return nvram.New(nvram.Config{Path: cfg.NVRAM.Path, Logger: log}), nil
	case config.BackendSQLite:
		return sqlite.New(cfg.SQLite.Path, sqlite.SchemaVersion, log), nil
	default:
		return nil, fmt.Errorf("invalid backend %s", cfg.Backend)
	}
}

// withStore opens the configured store, runs fn, and closes the store on
// every path. A close error is reported only when fn succeeded.
func (a *app) withStore(fn func(s store.Store) error) (err error) {
	s, err := newStore(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := s.Open(); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	return fn(s)
}

func newLogger(c config.LogConfig, cmd *cobra.Command) (logger.Logger, func() error, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}
	if c.Syslog {
		l, err := logger.NewSyslogLogger("dboot", level)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	}
	return logger.New(cmd.ErrOrStderr(), level), func() error { return nil }, nil
}
