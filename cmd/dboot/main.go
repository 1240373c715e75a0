package main

import (
	"fmt"
	"os"

	"github.com/maloquacious/dboot/internal/config"
	"github.com/maloquacious/dboot/internal/logger"
	"github.com/maloquacious/dboot/internal/store/sqlite"
	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"
)

var (
	version   = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
	buildDate = ""
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Default.Error("%v", err)
		os.Exit(1)
	}
}

// app carries the resolved configuration from the persistent pre-run to
// the subcommands.
type app struct {
	cfg      config.Config
	log      logger.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{log: logger.Default, closeLog: func() error { return nil }}

	rootCmd := &cobra.Command{
		Use:   "dboot",
		Short: "Read and update the persistent boot status word",
		Long: `dboot reads and writes the boot status word and the image descriptions
kept on an mtd flash partition, an nvram record device, or (on development
hosts) a sqlite emulation database. It never interprets the word's bits.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return a.closeLog() },
	}

	// Global flags
	config.AddFlags(rootCmd.PersistentFlags())

	// status command group
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print the status word",
		Args:  cobra.NoArgs,
		RunE:  a.runStatusGet,
	}
	statusSetCmd := &cobra.Command{
		Use:   "set WORD",
		Short: "Write WORD (decimal or 0x hex) if it differs from the stored word",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runStatusSet,
	}
	statusUpdateCmd := &cobra.Command{
		Use:   "update",
		Short: "Set and clear raw bit masks, writing only if the word changes",
		Args:  cobra.NoArgs,
		RunE:  a.runStatusUpdate,
	}
	statusUpdateCmd.Flags().String("set", "", "bits to set")
	statusUpdateCmd.Flags().String("clear", "", "bits to clear")
	statusCmd.AddCommand(statusSetCmd, statusUpdateCmd)

	// describe command group
	describeCmd := &cobra.Command{
		Use:   "describe [SLOT]",
		Short: "Print the description of SLOT (bl, os-a, os-b), or of every slot",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runDescribe,
	}
	describeSetCmd := &cobra.Command{
		Use:   "set SLOT TEXT",
		Short: "Store TEXT as the description of SLOT",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runDescribeSet,
	}
	describeCmd.AddCommand(describeSetCmd)

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Print the selected backend and its capabilities",
		Args:  cobra.NoArgs,
		RunE:  a.runInfo,
	}

	// db command group
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the sqlite emulation database",
	}
	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create and initialize the emulation database",
		Args:  cobra.NoArgs,
		RunE:  a.runDBCreate,
	}
	dbVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify schema integrity and version",
		Args:  cobra.NoArgs,
		RunE:  a.runDBVerify,
	}
	dbCmd.AddCommand(dbCreateCmd, dbVerifyCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of dboot",
		Args:  cobra.NoArgs,
		// needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dboot %s (schema %s)", version.String(), sqlite.SchemaVersion)
			if buildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " built %s", buildDate)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(statusCmd, describeCmd, infoCmd, dbCmd, versionCmd)
	return rootCmd
}

// setup resolves configuration (defaults, file, environment, flags) and
// builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	v, err := config.NewViper(cmd.Root().PersistentFlags())
	if err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	cfg, err := config.Resolve(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	log, closeLog, err := newLogger(cfg.Log, cmd)
	if err != nil {
		return err
	}
	a.log = log
	a.closeLog = closeLog
	return nil
}
