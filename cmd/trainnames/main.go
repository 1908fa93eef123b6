package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trainnames/internal/config"
	"trainnames/internal/logging"
	"trainnames/internal/storage"
)

type app struct {
	cfg     config.Config
	log     *zap.Logger
	verbose bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(newRootCmd(&app{}).ExecuteContext(ctx))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "trainnames",
		Short:         "Extract train name histories from class tables and serve them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			level := cfg.LogLevel
			if a.verbose {
				level = "debug"
			}
			log, err := logging.New(level)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newConvertCmd(a),
		newSeedCmd(a),
		newImportCmd(a),
		newClassesSeedCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
	)
	return root
}

// withDB opens the database for the duration of fn.
func (a *app) withDB(fn func(db *storage.DB) error) error {
	db, err := storage.Open(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
