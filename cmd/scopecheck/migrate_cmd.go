package main

import (
	"fmt"

	"github.com/erp/operatingunit/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalogue tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			if err := a.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			a.log.Info("Migration completed", zap.String("driver", a.db.Driver))
			return nil
		},
	}
	cmd.AddCommand(
		newMigrateDownCmd(opts),
		newMigrateVersionCmd(opts),
		newMigrateListCmd(),
	)
	return cmd
}

// withMigrator runs fn against the versioned migrations of the configured database
func withMigrator(cmd *cobra.Command, opts *rootOptions, fn func(*app, *migration.Migrator) error) error {
	a, err := newApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	m, err := a.db.Migrator(cmd.Context())
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(a, m)
}

func newMigrateDownCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back every catalogue migration (PostgreSQL only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, opts, func(_ *app, m *migration.Migrator) error {
				return m.Down()
			})
		},
	}
}

func newMigrateVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version (PostgreSQL only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, opts, func(a *app, m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				a.log.Info("Current migration version",
					zap.Uint("version", version),
					zap.Bool("dirty", dirty),
				)
				out := cmd.OutOrStdout()
				if dirty {
					_, err = fmt.Fprintf(out, "%d (dirty)\n", version)
				} else {
					_, err = fmt.Fprintf(out, "%d\n", version)
				}
				return err
			})
		},
	}
}

func newMigrateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the embedded catalogue migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := migration.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
