package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tenantrating/devtools/databases/sqlutil"
	"github.com/tenantrating/devtools/types"
)

// SequenceTable is maintained by SQLite for AUTOINCREMENT bookkeeping and
// never reported.
const SequenceTable = "sqlite_sequence"

type SQLiteConnector struct {
	db *sqlx.DB
}

func NewSQLiteConnector(connectionString string) (*SQLiteConnector, error) {
	db, err := sqlx.Open("sqlite3", readOnlyDSN(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	connector := &SQLiteConnector{
		db: db,
	}

	// Test the connection
	if err := connector.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", connectionString, err)
	}

	return connector, nil
}

// readOnlyDSN turns a plain file path into a read-only URI so that a
// missing database file is reported instead of created. Path segments are
// escaped since SQLite decodes %XX in URI file names.
func readOnlyDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "file:" + strings.Join(segments, "/") + "?mode=ro"
}

func (c *SQLiteConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLiteConnector) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := c.db.SelectContext(ctx, &tables, `
		SELECT name
		FROM sqlite_master
		WHERE type='table'
		AND name != ?`, SequenceTable)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}

// Discover
func (c *SQLiteConnector) Scan(ctx context.Context, tablesList []string) ([]types.Table, error) {
	tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{
		ReadOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	args := []interface{}{SequenceTable}
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type='table'
		AND name != ?`

	if len(tablesList) > 0 {
		// Query specific tables
		placeholders := make([]string, len(tablesList))
		for i, table := range tablesList {
			placeholders[i] = "?"
			args = append(args, table)
		}
		query += fmt.Sprintf(" AND name IN (%s)", strings.Join(placeholders, ","))
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

// Sample returns up to limit rows in storage order.
func (c *SQLiteConnector) Sample(ctx context.Context, table string, limit int) (*types.SampleSet, error) {
	return c.sample(ctx, c.db, table, limit)
}

// sample casts every cell to TEXT inside SQLite. The driver converts plain
// column reads by declared type (DATETIME to time.Time, BOOLEAN to bool),
// while an expression carries no declared type and arrives as stored.
func (c *SQLiteConnector) sample(ctx context.Context, q sqlx.QueryerContext, table string, limit int) (*types.SampleSet, error) {
	var columns []string
	if err := sqlx.SelectContext(ctx, q, &columns, "SELECT name FROM pragma_table_info(?)", table); err != nil {
		return nil, fmt.Errorf("unable to sample %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("unable to sample %s: no such table", table)
	}

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d",
		textColumns(columns), sqlutil.QuoteIdent(table, `"`), sqlutil.SampleLimit(limit))

	rows, err := q.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to sample %s: %w", table, err)
	}
	return sqlutil.CollectSample(rows)
}

func textColumns(columns []string) string {
	exprs := make([]string, len(columns))
	for i, col := range columns {
		quoted := sqlutil.QuoteIdent(col, `"`)
		exprs[i] = fmt.Sprintf("CAST(%s AS TEXT) AS %s", quoted, quoted)
	}
	return strings.Join(exprs, ", ")
}

func (c *SQLiteConnector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

type tableInfoRow struct {
	CID          int            `db:"cid"`
	Name         string         `db:"name"`
	Type         string         `db:"type"`
	NotNull      int            `db:"notnull"`
	DefaultValue sql.NullString `db:"dflt_value"`
	PK           int            `db:"pk"`
}

func (c *SQLiteConnector) loadColumns(ctx context.Context, tx *sqlx.Tx, tableName string) ([]types.Column, error) {
	var info []tableInfoRow
	if err := tx.SelectContext(ctx, &info, "SELECT * FROM pragma_table_info(?)", tableName); err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}

	columns := make([]types.Column, 0, len(info))
	for _, col := range info {
		columns = append(columns, types.Column{
			Name:       col.Name,
			Type:       col.Type,
			Nullable:   col.NotNull == 0,
			PrimaryKey: col.PK > 0,
		})
	}

	return columns, nil
}

func (c *SQLiteConnector) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
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
			SELECT 1 FROM sqlite_master
			WHERE type='table' AND name = ?
		)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to check table existence: %w", err)
	}
	if !exists || table == SequenceTable {
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

	var primaryKeys []string
	err = tx.SelectContext(ctx, &primaryKeys, `
		SELECT name
		FROM pragma_table_info(?)
		WHERE pk > 0
		ORDER BY pk`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary keys: %w", err)
	}

	indexes, err := c.loadIndexes(ctx, tx, table)
	if err != nil {
		return nil, err
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

func (c *SQLiteConnector) loadIndexes(ctx context.Context, tx *sqlx.Tx, table string) ([]types.Index, error) {
	var list []struct {
		Name   string `db:"name"`
		Unique bool   `db:"unique"`
	}
	err := tx.SelectContext(ctx, &list, `
		SELECT name, "unique"
		FROM pragma_index_list(?)
		WHERE origin != 'pk'`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}

	var indexes []types.Index
	for _, idx := range list {
		var indexColumns []string
		err := tx.SelectContext(ctx, &indexColumns, `
			SELECT name
			FROM pragma_index_info(?)
			WHERE name IS NOT NULL
			ORDER BY seqno`, idx.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns of index %s: %w", idx.Name, err)
		}

		if len(indexColumns) > 0 {
			indexes = append(indexes, types.Index{
				Name:    idx.Name,
				Columns: indexColumns,
				Unique:  idx.Unique,
			})
		}
	}
	return indexes, nil
}
