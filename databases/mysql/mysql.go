package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/tenantrating/devtools/databases/sqlutil"
	"github.com/tenantrating/devtools/types"
)

type MySQLConnector struct {
	db *sqlx.DB
}

func NewMySQLConnector(connectionString string) (*MySQLConnector, error) {
	if _, err := ParseDSN(connectionString); err != nil {
		return nil, err
	}

	// Open the database connection
	db, err := sqlx.Open("mysql", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	connector := &MySQLConnector{
		db: db,
	}

	if err := connector.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return connector, nil
}

// ParseDSN validates a DSN and requires it to name a database, since every
// query here is scoped to DATABASE().
func ParseDSN(connectionString string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("connection string must name a database")
	}
	return cfg, nil
}

func (c *MySQLConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *MySQLConnector) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := c.db.SelectContext(ctx, &tables, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema = DATABASE()`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}

// Discover
func (c *MySQLConnector) Scan(ctx context.Context, tablesList []string) ([]types.Table, error) {
	tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{
		ReadOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	var args []interface{}
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema = DATABASE()`

	if len(tablesList) > 0 {
		// Query specific tables
		placeholders := make([]string, len(tablesList))
		for i, table := range tablesList {
			placeholders[i] = "?"
			args = append(args, table)
		}
		query += fmt.Sprintf(" AND table_name IN (%s)", strings.Join(placeholders, ","))
	}

	var names []string
	if err := tx.SelectContext(ctx, &names, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	tables := make([]types.Table, 0, len(names))
	for _, tableName := range names {
		columns, err := c.loadColumns(ctx, tx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to load columns for table %s: %w", tableName, err)
		}

		tables = append(tables, types.Table{
			Name:    tableName,
			Columns: columns,
		})
	}

	return tables, nil
}

func (c *MySQLConnector) Sample(ctx context.Context, table string, limit int) (*types.SampleSet, error) {
	return c.sample(ctx, c.db, table, limit)
}

func (c *MySQLConnector) sample(ctx context.Context, q sqlx.QueryerContext, table string, limit int) (*types.SampleSet, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", sqlutil.QuoteIdent(table, "`"), sqlutil.SampleLimit(limit))

	rows, err := q.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to sample %s: %w", table, err)
	}
	return sqlutil.CollectSample(rows)
}

func (c *MySQLConnector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// information_schema reports upper case column names on MySQL 8, so
// struct scans alias every column to the lower case tag.
func (c *MySQLConnector) loadColumns(ctx context.Context, tx *sqlx.Tx, tableName string) ([]types.Column, error) {
	var info []struct {
		Name       string `db:"column_name"`
		DataType   string `db:"column_type"`
		IsNullable string `db:"is_nullable"`
		ColumnKey  string `db:"column_key"`
	}
	err := tx.SelectContext(ctx, &info, `
		SELECT
			column_name AS column_name,
			column_type AS column_type,
			is_nullable AS is_nullable,
			column_key AS column_key
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = DATABASE()
		ORDER BY ordinal_position`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}

	columns := make([]types.Column, 0, len(info))
	for _, col := range info {
		columns = append(columns, types.Column{
			Name:       col.Name,
			Type:       col.DataType,
			Nullable:   col.IsNullable == "YES",
			PrimaryKey: col.ColumnKey == "PRI",
		})
	}

	return columns, nil
}

// DescribeTable returns detailed information about a specific table
func (c *MySQLConnector) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
	tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{
		ReadOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	// Check if table exists
	var exists bool
	err = tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name = ?
		)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to check table existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("table %s not found", table)
	}

	columns, err := c.loadColumns(ctx, tx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to load columns: %w", err)
	}

	var rowCount int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqlutil.QuoteIdent(table, "`"))
	if err := tx.GetContext(ctx, &rowCount, countQuery); err != nil {
		return nil, fmt.Errorf("failed to get row count: %w", err)
	}

	sample, err := c.sample(ctx, tx, table, sqlutil.DefaultSampleLimit)
	if err != nil {
		return nil, err
	}

	var primaryKeys []string
	err = tx.SelectContext(ctx, &primaryKeys, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
		AND table_name = ?
		AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary keys: %w", err)
	}

	var indexRows []struct {
		Name     string `db:"index_name"`
		Columns  string `db:"columns"`
		IsUnique bool   `db:"is_unique"`
	}
	err = tx.SelectContext(ctx, &indexRows, `
		SELECT
			index_name AS index_name,
			GROUP_CONCAT(column_name ORDER BY seq_in_index) AS columns,
			NOT non_unique AS is_unique
		FROM information_schema.statistics
		WHERE table_schema = DATABASE()
		AND table_name = ?
		AND index_name != 'PRIMARY'
		GROUP BY index_name, non_unique`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}

	indexes := make([]types.Index, 0, len(indexRows))
	for _, idx := range indexRows {
		indexes = append(indexes, types.Index{
			Name:    idx.Name,
			Columns: sqlutil.SplitColumnList(idx.Columns),
			Unique:  idx.IsUnique,
		})
	}

	return &types.TableDescription{
		Name:        table,
		Columns:     columns,
		RowCount:    rowCount,
		Sample:      *sample,
		PrimaryKeys: primaryKeys,
		Indexes:     indexes,
	}, nil
}
