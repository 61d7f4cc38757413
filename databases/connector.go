package databases

import (
	"context"
	"fmt"

	"github.com/tenantrating/devtools/databases/mysql"
	"github.com/tenantrating/devtools/databases/postgres"
	"github.com/tenantrating/devtools/databases/sqlite"
	"github.com/tenantrating/devtools/types"
)

// Database is the read-only view every engine connector exposes.
type Database interface {
	Ping(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)
	Scan(ctx context.Context, tableList []string) ([]types.Table, error)
	DescribeTable(ctx context.Context, table string) (*types.TableDescription, error)
	Sample(ctx context.Context, table string, limit int) (*types.SampleSet, error)
	Close() error
}

// NewConnector opens a connector for dbType. connectionString is a file
// path for sqlite and a DSN for the server engines.
func NewConnector(dbType, connectionString string) (Database, error) {
	switch dbType {
	case "sqlite":
		return sqlite.NewSQLiteConnector(connectionString)
	case "mysql":
		return mysql.NewMySQLConnector(connectionString)
	case "postgres":
		return postgres.NewPostgresConnector(connectionString)
	default:
		return nil, fmt.Errorf("unsupported Database type: %s", dbType)
	}
}
