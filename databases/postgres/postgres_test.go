package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestNewPostgresConnector_BadConnectionString(t *testing.T) {
	_, err := NewPostgresConnector("postgres://localhost:notaport/tenantrating")
	assert.ErrorContains(t, err, "failed to parse connection string")
}

func TestNewPostgresConnector_Unreachable(t *testing.T) {
	_, err := NewPostgresConnector("host=127.0.0.1 port=1 dbname=tenantrating user=app connect_timeout=1")
	assert.ErrorContains(t, err, "failed to ping database")
}

// Runs against a live server when DEVTOOLS_TEST_POSTGRES_DSN is set.
func TestPostgresConnector_Live(t *testing.T) {
	dsn := os.Getenv("DEVTOOLS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DEVTOOLS_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	setup, err := sqlx.Open("pgx", dsn)
	assert.NilError(t, err)
	defer setup.Close()
	_, err = setup.ExecContext(ctx, `
DROP TABLE IF EXISTS devtools_leases;
CREATE TABLE devtools_leases (
	id SERIAL PRIMARY KEY,
	tenant_id INTEGER NOT NULL,
	unit_id INTEGER NOT NULL,
	note TEXT
);
CREATE UNIQUE INDEX devtools_leases_tenant_unit ON devtools_leases (tenant_id, unit_id);
INSERT INTO devtools_leases (tenant_id, unit_id, note) VALUES (1, 10, 'first'), (2, 20, NULL);
`)
	assert.NilError(t, err)
	t.Cleanup(func() { setup.ExecContext(ctx, `DROP TABLE IF EXISTS devtools_leases`) })

	c, err := NewPostgresConnector(dsn)
	assert.NilError(t, err)
	defer c.Close()

	tables, err := c.Scan(ctx, []string{"devtools_leases"})
	assert.NilError(t, err)
	assert.Assert(t, is.Len(tables, 1))
	assert.DeepEqual(t, tables[0].ColumnNames(), []string{"id", "tenant_id", "unit_id", "note"})
	assert.Check(t, tables[0].Columns[0].PrimaryKey)

	sample, err := c.Sample(ctx, "devtools_leases", 1)
	assert.NilError(t, err)
	assert.Check(t, is.Len(sample.Rows, 1))

	desc, err := c.DescribeTable(ctx, "devtools_leases")
	assert.NilError(t, err)
	assert.Equal(t, desc.RowCount, int64(2))
	assert.DeepEqual(t, desc.PrimaryKeys, []string{"id"})
	assert.Assert(t, is.Len(desc.Indexes, 1))
	assert.DeepEqual(t, desc.Indexes[0].Columns, []string{"tenant_id", "unit_id"})
	assert.Check(t, desc.Indexes[0].Unique)
}
