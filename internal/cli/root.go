// Package cli is the tradebook command line: listing, import and export
// against the configured store without running the API server.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tradebook/internal/app"
	"github.com/MrJamesThe3rd/tradebook/internal/config"
)

// RootOptions holds global flags and the services opened for the running command.
type RootOptions struct {
	Verbose bool
	EnvFile string

	cfg *config.Config
	app *app.App
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "tradebook",
		Short:         "Bookkeeping for buy, transport and sell trades",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.open(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if opts.app == nil {
				return nil
			}

			return opts.app.Close()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file read before the environment")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewLearnCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func (o *RootOptions) open(cmd *cobra.Command) error {
	// A missing dotenv file is fine; the environment alone may be enough.
	_ = godotenv.Load(o.EnvFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	o.cfg = cfg

	a, err := app.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	o.app = a

	return nil
}
