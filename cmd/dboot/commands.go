package main

import (
	"fmt"

	"github.com/maloquacious/dboot/internal/config"
	"github.com/maloquacious/dboot/internal/status"
	"github.com/maloquacious/dboot/internal/store"
	"github.com/maloquacious/dboot/internal/store/sqlite"
	"github.com/spf13/cobra"
)

func (a *app) runStatusGet(cmd *cobra.Command, args []string) error {
	return a.withStore(func(s store.Store) error {
		w, err := s.GetStatus()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), w)
		return nil
	})
}

func (a *app) runStatusSet(cmd *cobra.Command, args []string) error {
	want, err := status.ParseWord(args[0])
	if err != nil {
		return err
	}
	return a.updateStatus(cmd, func(status.Word) (status.Word, error) {
		return want, nil
	})
}

func (a *app) runStatusUpdate(cmd *cobra.Command, args []string) error {
	set, err := maskFlag(cmd, "set")
	if err != nil {
		return err
	}
	clear, err := maskFlag(cmd, "clear")
	if err != nil {
		return err
	}
	return a.updateStatus(cmd, func(w status.Word) (status.Word, error) {
		return applyMasks(w, set, clear)
	})
}

// updateStatus reads the word once, derives the new one and writes it
// only if it changed.
func (a *app) updateStatus(cmd *cobra.Command, next func(status.Word) (status.Word, error)) error {
	return a.withStore(func(s store.Store) error {
		old, err := s.GetStatus()
		if err != nil {
			return err
		}
		w, err := next(old)
		if err != nil {
			return err
		}
		if w != old {
			if err := s.SetStatus(w); err != nil {
				return err
			}
			a.log.Info("status %v -> %v", old, w)
		} else {
			a.log.Debug("status unchanged at %v", w)
		}
		fmt.Fprintln(cmd.OutOrStdout(), w)
		return nil
	})
}

func (a *app) runDescribe(cmd *cobra.Command, args []string) error {
	slots := status.Slots
	if len(args) == 1 {
		slot, err := status.ParseSlot(args[0])
		if err != nil {
			return err
		}
		slots = []status.Slot{slot}
	}

	return a.withStore(func(s store.Store) error {
		for _, slot := range slots {
			text, err := s.GetDescription(slot)
			if err != nil {
				return err
			}
			if len(slots) == 1 {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", slot, text)
			}
		}
		return nil
	})
}

func (a *app) runDescribeSet(cmd *cobra.Command, args []string) error {
	slot, err := status.ParseSlot(args[0])
	if err != nil {
		return err
	}

	return a.withStore(func(s store.Store) error {
		if !s.Capabilities().Descriptions {
			a.log.Warn("%s backend is status-only; %s description not stored", s.Name(), slot)
		}
		return s.SetDescription(slot, args[1])
	})
}

func (a *app) runInfo(cmd *cobra.Command, args []string) error {
	s, err := newStore(a.cfg, a.log)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "backend: %s\n", s.Name())
	fmt.Fprintf(out, "descriptions: %t\n", s.Capabilities().Descriptions)
	switch a.cfg.Backend {
	case config.BackendMTD:
		fmt.Fprintf(out, "mtd name: %s\n", a.cfg.MTD.Name)
		fmt.Fprintf(out, "empty log default: %s\n", a.cfg.MTD.DefaultStatus)
	case config.BackendNVRAM:
		fmt.Fprintf(out, "device: %s\n", a.cfg.NVRAM.Path)
	case config.BackendSQLite:
		fmt.Fprintf(out, "database: %s\n", a.cfg.SQLite.Path)
	}
	return nil
}

// --- emulation database commands ---

func (a *app) runDBCreate(cmd *cobra.Command, args []string) error {
	db := sqlite.New(a.cfg.SQLite.Path, sqlite.SchemaVersion, a.log)
	if err := db.Create(); err != nil {
		return err
	}
	defer db.Close()

	state, err := db.CheckState()
	if err != nil {
		return err
	}
	switch state {
	case store.StateReady:
		fmt.Fprintf(cmd.OutOrStdout(), "%s already initialized at schema %s\n", a.cfg.SQLite.Path, sqlite.SchemaVersion)
		return nil
	case store.StateVersionMismatch:
		found, _ := db.GetSchemaVersion()
		return fmt.Errorf("%w: %s has schema %s, want %s", store.ErrSchema, a.cfg.SQLite.Path, found, sqlite.SchemaVersion)
	}

	if err := db.InitSchema(sqlite.SchemaVersion); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s at schema %s\n", a.cfg.SQLite.Path, sqlite.SchemaVersion)
	return nil
}

func (a *app) runDBVerify(cmd *cobra.Command, args []string) error {
	exists, err := store.CheckExists(a.cfg.SQLite.Path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s is %s", store.ErrSchema, a.cfg.SQLite.Path, store.StateMissing)
	}

	db := sqlite.New(a.cfg.SQLite.Path, sqlite.SchemaVersion, a.log)
	if err := db.Create(); err != nil {
		return err
	}
	defer db.Close()

	state, err := db.CheckState()
	if err != nil {
		return err
	}
	found, err := db.GetSchemaVersion()
	if err != nil && state != store.StateUninitialized {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "database: %s\nstate: %s\nschema: %s\n", a.cfg.SQLite.Path, state, found)
	if state != store.StateReady {
		return fmt.Errorf("%w: %s is %s", store.ErrSchema, a.cfg.SQLite.Path, state)
	}
	return nil
}
