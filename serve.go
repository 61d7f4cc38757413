package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/tenantrating/devtools/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	var dbFlags databaseFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the database inspector as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			connector, err := a.connect(cmd, &dbFlags)
			if err != nil {
				return err
			}
			defer connector.Close()

			s := server.NewMCPServer(
				"devtools",
				version,
				server.WithToolCapabilities(false),
				server.WithLogging(),
			)

			mcp.RegisterTools(s, connector, a.cfg.Inspect.Limit)
			a.logger.Info("serving MCP tools on stdio", "database", a.cfg.Database.DisplayName())

			return server.ServeStdio(s)
		},
	}

	dbFlags.register(cmd)
	return cmd
}
