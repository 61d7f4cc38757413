package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

const fixtureSchema = `
CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL);
CREATE TABLE "odd ""name""" (v TEXT);
CREATE TABLE empty (a INTEGER, b REAL);
CREATE UNIQUE INDEX users_name ON users(name);
INSERT INTO users (name) VALUES ('Alice'), ('Bob'), ('Carol'), ('Dan'), ('Eve'), ('Frank'), ('Grace');
INSERT INTO "odd ""name""" (v) VALUES ('x');
`

func writeDatabase(t *testing.T, path, schema string) {
	t.Helper()
	db, err := sqlx.Open("sqlite3", path)
	assert.NilError(t, err)
	_, err = db.Exec(schema)
	assert.NilError(t, err)
	assert.NilError(t, db.Close())
}

func newFixture(t *testing.T) *SQLiteConnector {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")
	writeDatabase(t, path, fixtureSchema)

	c, err := NewSQLiteConnector(path)
	assert.NilError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewSQLiteConnector_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := NewSQLiteConnector(path)
	assert.ErrorContains(t, err, "failed to open")
}

func TestListTablesSkipsSequenceTable(t *testing.T) {
	c := newFixture(t)

	tables, err := c.ListTables(context.Background())
	assert.NilError(t, err)
	assert.Check(t, is.Len(tables, 3))
	for _, name := range tables {
		assert.Check(t, name != SequenceTable)
	}
}

func TestScan(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	tables, err := c.Scan(ctx, nil)
	assert.NilError(t, err)
	assert.Check(t, is.Len(tables, 3))

	tables, err = c.Scan(ctx, []string{"users", SequenceTable})
	assert.NilError(t, err)
	assert.Assert(t, is.Len(tables, 1))
	assert.Equal(t, tables[0].Name, "users")
	assert.DeepEqual(t, tables[0].ColumnNames(), []string{"id", "name"})
	assert.Equal(t, tables[0].Columns[0].Type, "INTEGER")
	assert.Check(t, tables[0].Columns[0].PrimaryKey)
	assert.Equal(t, tables[0].Columns[1].Type, "TEXT")
	assert.Check(t, !tables[0].Columns[1].Nullable)
}

func TestSample(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	set, err := c.Sample(ctx, "users", 5)
	assert.NilError(t, err)
	assert.DeepEqual(t, set.Columns, []string{"id", "name"})
	assert.Check(t, is.Len(set.Rows, 5))

	set, err = c.Sample(ctx, "empty", 5)
	assert.NilError(t, err)
	assert.Check(t, is.Len(set.Rows, 0))

	set, err = c.Sample(ctx, `odd "name"`, 0)
	assert.NilError(t, err)
	assert.Assert(t, is.Len(set.Rows, 1))
	assert.Equal(t, set.Rows[0][0], "x")
}

func TestSample_UnknownTable(t *testing.T) {
	c := newFixture(t)
	_, err := c.Sample(context.Background(), "nope", 5)
	assert.ErrorContains(t, err, "unable to sample nope")
}

func TestDescribeTable(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	desc, err := c.DescribeTable(ctx, "users")
	assert.NilError(t, err)
	assert.Equal(t, desc.RowCount, int64(7))
	assert.DeepEqual(t, desc.PrimaryKeys, []string{"id"})
	assert.Check(t, is.Len(desc.Sample.Rows, 5))
	assert.Assert(t, is.Len(desc.Indexes, 1))
	assert.Equal(t, desc.Indexes[0].Name, "users_name")
	assert.DeepEqual(t, desc.Indexes[0].Columns, []string{"name"})
	assert.Check(t, desc.Indexes[0].Unique)

	_, err = c.DescribeTable(ctx, SequenceTable)
	assert.ErrorContains(t, err, "not found")
	_, err = c.DescribeTable(ctx, "nope")
	assert.ErrorContains(t, err, "table nope not found")
}

func TestSample_KeepsStoredText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed.db")
	writeDatabase(t, path, `
CREATE TABLE ev (at DATETIME, ok BOOLEAN, r REAL, n INTEGER, b BLOB);
INSERT INTO ev VALUES ('2024-01-02 03:04:05', 1, 4.0, 7, NULL);
`)
	c, err := NewSQLiteConnector(path)
	assert.NilError(t, err)
	defer c.Close()

	set, err := c.Sample(context.Background(), "ev", 5)
	assert.NilError(t, err)
	assert.DeepEqual(t, set.Columns, []string{"at", "ok", "r", "n", "b"})
	assert.Assert(t, is.Len(set.Rows, 1))
	assert.DeepEqual(t, set.Rows[0], []any{"2024-01-02 03:04:05", "1", "4.0", "7", nil})
}

func TestReadOnlyDSN(t *testing.T) {
	assert.Equal(t, readOnlyDSN("tenantrating_v2.db"), "file:tenantrating_v2.db?mode=ro")
	assert.Equal(t, readOnlyDSN("/data/a b/x?y#z.db"), "file:/data/a%20b/x%3Fy%23z.db?mode=ro")
	assert.Equal(t, readOnlyDSN("file:x.db?mode=rw"), "file:x.db?mode=rw")
}

func TestNewSQLiteConnector_ReservedCharsInPath(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.db")
	writeDatabase(t, plain, "CREATE TABLE t (a INTEGER);")
	odd := filepath.Join(dir, "odd?name#1.db")
	assert.NilError(t, os.Rename(plain, odd))

	c, err := NewSQLiteConnector(odd)
	assert.NilError(t, err)
	defer c.Close()

	tables, err := c.ListTables(context.Background())
	assert.NilError(t, err)
	assert.DeepEqual(t, tables, []string{"t"})
}
