package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/tenantrating/devtools/databases/sqlutil"
	"github.com/tenantrating/devtools/types"
)

// PostgresConnector only sees tables in the session's current_schema().
type PostgresConnector struct {
	db *sqlx.DB
}

func NewPostgresConnector(connectionString string) (*PostgresConnector, error) {
	config, err := pgx.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.PreferSimpleProtocol = true

	db := sqlx.NewDb(stdlib.OpenDB(*config), "pgx")

	connector := &PostgresConnector{
		db: db,
	}

	// Test the connection
	if err := connector.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return connector, nil
}

func (c *PostgresConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *PostgresConnector) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := c.db.SelectContext(ctx, &tables, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema = current_schema()`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}

// Discover
func (c *PostgresConnector) Scan(ctx context.Context, tablesList []string) ([]types.Table, error) {
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
		AND table_schema = current_schema()`

	if len(tablesList) > 0 {
		placeholders := make([]string, len(tablesList))
		for i, table := range tablesList {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
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
			return nil, fmt.Errorf("failed to load columns: %w", err)
		}

		tables = append(tables, types.Table{
			Name:    tableName,
			Columns: columns,
		})
	}

	return tables, nil
}

func (c *PostgresConnector) Sample(ctx context.Context, table string, limit int) (*types.SampleSet, error) {
	return c.sample(ctx, c.db, table, limit)
}

func (c *PostgresConnector) sample(ctx context.Context, q sqlx.QueryerContext, table string, limit int) (*types.SampleSet, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", sqlutil.QuoteIdent(table, `"`), sqlutil.SampleLimit(limit))

	rows, err := q.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to sample %s: %w", table, err)
	}
	return sqlutil.CollectSample(rows)
}

func (c *PostgresConnector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *PostgresConnector) loadColumns(ctx context.Context, tx *sqlx.Tx, tableName string) ([]types.Column, error) {
	var info []struct {
		Name       string `db:"column_name"`
		DataType   string `db:"data_type"`
		IsNullable string `db:"is_nullable"`
	}
	err := tx.SelectContext(ctx, &info, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = $1 AND table_schema = current_schema()
		ORDER BY ordinal_position`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}

	pks, err := c.primaryKeys(ctx, tx, tableName)
	if err != nil {
		return nil, err
	}
	isPK := make(map[string]bool, len(pks))
	for _, pk := range pks {
		isPK[pk] = true
	}

	columns := make([]types.Column, 0, len(info))
	for _, col := range info {
		columns = append(columns, types.Column{
			Name:       col.Name,
			Type:       col.DataType,
			Nullable:   col.IsNullable == "YES",
			PrimaryKey: isPK[col.Name],
		})
	}

	return columns, nil
}

func (c *PostgresConnector) primaryKeys(ctx context.Context, tx *sqlx.Tx, tableName string) ([]string, error) {
	var primaryKeys []string
	err := tx.SelectContext(ctx, &primaryKeys, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = current_schema()
		AND tc.table_name = $1
		ORDER BY kcu.ordinal_position`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary keys: %w", err)
	}
	return primaryKeys, nil
}

func (c *PostgresConnector) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
	tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{
		ReadOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	var exists bool
	err = tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
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
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqlutil.QuoteIdent(table, `"`))
	if err := tx.GetContext(ctx, &rowCount, countQuery); err != nil {
		return nil, fmt.Errorf("failed to get row count: %w", err)
	}

	sample, err := c.sample(ctx, tx, table, sqlutil.DefaultSampleLimit)
	if err != nil {
		return nil, err
	}

	primaryKeys, err := c.primaryKeys(ctx, tx, table)
	if err != nil {
		return nil, err
	}

	var indexRows []struct {
		Name    string `db:"index_name"`
		Columns string `db:"columns"`
		Unique  bool   `db:"is_unique"`
	}
	err = tx.SelectContext(ctx, &indexRows, `
		SELECT
			i.relname AS index_name,
			string_agg(a.attname, ',' ORDER BY array_position(ix.indkey::int2[], a.attnum)) AS columns,
			ix.indisunique AS is_unique
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = current_schema()
		AND t.relname = $1
		AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}

	indexes := make([]types.Index, 0, len(indexRows))
	for _, idx := range indexRows {
		indexes = append(indexes, types.Index{
			Name:    idx.Name,
			Columns: sqlutil.SplitColumnList(idx.Columns),
			Unique:  idx.Unique,
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
