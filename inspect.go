package main

import (
	"github.com/spf13/cobra"
	"github.com/tenantrating/devtools/config"
	"github.com/tenantrating/devtools/databases"
	"github.com/tenantrating/devtools/inspector"
)

type databaseFlags struct {
	dbType string
	file   string
	dsn    string
}

func (f *databaseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dbType, "type", "", "database type: sqlite, mysql or postgres")
	cmd.Flags().StringVar(&f.file, "db", "", "sqlite database file (default "+config.DefaultDatabaseFile+")")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "connection string for mysql or postgres")
}

func (f *databaseFlags) apply(cmd *cobra.Command, d *config.DatabaseConfig) {
	if cmd.Flags().Changed("type") {
		d.DBType = f.dbType
	}
	if cmd.Flags().Changed("db") {
		d.File = f.file
	}
	if cmd.Flags().Changed("dsn") {
		d.ConnectionString = f.dsn
	}
}

// connect opens the configured database. Callers close it.
func (a *app) connect(cmd *cobra.Command, flags *databaseFlags) (databases.Database, error) {
	flags.apply(cmd, &a.cfg.Database)

	connStr, err := a.cfg.Database.GetConnectionString()
	if err != nil {
		return nil, err
	}

	a.logger.Debug("connecting", "type", a.cfg.Database.DBType, "target", a.cfg.Database.DisplayName())
	return databases.NewConnector(a.cfg.Database.DBType, connStr)
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		dbFlags databaseFlags
		limit   int
		format  string
		tables  []string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print every table's schema and a few sample rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("limit") {
				a.cfg.Inspect.Limit = limit
			}
			if cmd.Flags().Changed("format") {
				a.cfg.Inspect.Format = format
			}

			connector, err := a.connect(cmd, &dbFlags)
			if err != nil {
				return err
			}
			defer connector.Close()

			ins := inspector.New(connector,
				inspector.WithLimit(a.cfg.Inspect.Limit),
				inspector.WithTables(tables...),
				inspector.WithLogger(a.logger),
			)
			return ins.Run(cmd.Context(), cmd.OutOrStdout(), a.cfg.Database.DisplayName(), a.cfg.Inspect.Format)
		},
	}

	dbFlags.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", config.DefaultSampleLimit, "sample rows per table")
	cmd.Flags().StringVar(&format, "format", inspector.FormatText, "output format: text or json")
	cmd.Flags().StringSliceVar(&tables, "table", nil, "only inspect these tables (repeatable)")
	return cmd
}
