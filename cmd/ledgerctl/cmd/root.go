// Package cmd provides the ledgerctl commands.
package cmd

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/carson-networks/allowance-server/internal/bootstrap"
	"github.com/carson-networks/allowance-server/internal/config"
	"github.com/carson-networks/allowance-server/internal/logging"
)

// ErrDrift is returned when reconcile finds a cached balance that does not
// match its ledger.
var ErrDrift = errors.New("ledger drift detected")

type options struct {
	debug  bool
	logger *logrus.Logger
	// load is replaced in tests.
	load func() (*config.Config, error)
}

// NewRootCmd builds the ledgerctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{
		logger: logging.SetupCLILogging(os.Stderr),
		load:   config.ProcessEnvironmentVariables,
	})
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the allowance ledger",
		Long: `ledgerctl runs maintenance tasks against the allowance ledger
using the same configuration as the server.

Example:
  ledgerctl migrate
  ledgerctl schedule run --date 2025-06-01 --catch-up
  ledgerctl reconcile`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger.SetOutput(cmd.ErrOrStderr())
			if opts.debug {
				opts.logger.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newScheduleCmd(opts))
	rootCmd.AddCommand(newReconcileCmd(opts))
	return rootCmd
}

// Execute runs ledgerctl with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) config() (*config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	if !o.debug {
		if err := logging.SetLevel(o.logger, cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (o *options) app() (*bootstrap.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return o.appFrom(cfg)
}

func (o *options) appFrom(cfg *config.Config) (*bootstrap.App, error) {
	return bootstrap.New(cfg, o.logger)
}
