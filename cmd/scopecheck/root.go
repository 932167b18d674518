package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	lang       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "scopecheck",
		Short:         "Operating unit consistency checker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: ./config.toml, ./config/config.toml, /etc/scopecheck/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.lang, "lang", "", "Report language as a BCP 47 tag")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newAuditCmd(opts),
		newCheckCmd(opts),
		newWriteCmd(opts),
	)
	return cmd
}

// errViolations marks a run that completed but found inconsistent records
var errViolations = errors.New("incompatible operating units found")

func exitCode(err error) int {
	if errors.Is(err, errViolations) {
		return 2
	}
	if _, ok := orgscope.AsConsistencyError(err); ok {
		return 2
	}
	return 1
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
