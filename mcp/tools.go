package mcp

import (
	goMCP "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tenantrating/devtools/databases"
	"github.com/tenantrating/devtools/handlers"
)

func RegisterTools(s *server.MCPServer, connector databases.Database, sampleLimit int) {
	listTool := goMCP.NewTool("list_tables",
		goMCP.WithDescription("List the user tables of the database"),
	)

	describeTool := goMCP.NewTool("describe_table",
		goMCP.WithDescription("Describe a table: columns, keys, indexes, row count and sample rows"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to describe"),
		),
	)

	sampleTool := goMCP.NewTool("sample_table",
		goMCP.WithDescription("Get sample rows from a specific table"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to sample"),
		),
		goMCP.WithNumber("limit",
			goMCP.Description("Number of rows to return (default: 5)"),
		),
	)

	s.AddTool(listTool, handlers.ListTablesHandler(connector))
	s.AddTool(describeTool, handlers.DescribeHandler(connector))
	s.AddTool(sampleTool, handlers.SampleHandler(connector, sampleLimit))
}
