package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tenantrating/devtools/databases"
	"github.com/tenantrating/devtools/inspector"
	"github.com/tenantrating/devtools/types"
)

type ToolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

type sampleResult struct {
	Table   string              `json:"table"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

type describeResult struct {
	Name        string              `json:"name"`
	Columns     []types.Column      `json:"columns"`
	RowCount    int64               `json:"row_count"`
	PrimaryKeys []string            `json:"primary_keys,omitempty"`
	Indexes     []types.Index       `json:"indexes,omitempty"`
	SampleData  []map[string]string `json:"sample_data"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// ListTablesHandler creates a handler for the list_tables tool
func ListTablesHandler(connector databases.Database) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tables, err := connector.ListTables(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("List tables failed: %v", err)), nil
		}
		if tables == nil {
			tables = []string{}
		}
		return jsonResult(tables)
	}
}

// DescribeHandler creates a handler for the describe_table tool
func DescribeHandler(connector databases.Database) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}

		desc, err := connector.DescribeTable(ctx, table)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Describe failed: %v", err)), nil
		}

		return jsonResult(describeResult{
			Name:        desc.Name,
			Columns:     desc.Columns,
			RowCount:    desc.RowCount,
			PrimaryKeys: desc.PrimaryKeys,
			Indexes:     desc.Indexes,
			SampleData:  inspector.RowsAsText(desc.Sample),
		})
	}
}

// SampleHandler creates a handler for the sample_table tool
func SampleHandler(connector databases.Database, defaultLimit int) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}

		limit := request.GetInt("limit", defaultLimit)

		set, err := connector.Sample(ctx, table, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Sample failed: %v", err)), nil
		}

		return jsonResult(sampleResult{
			Table:   table,
			Columns: set.Columns,
			Rows:    inspector.RowsAsText(*set),
		})
	}
}
