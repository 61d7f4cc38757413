// Package inspector walks every user table of a database and prints its
// schema together with a handful of sample rows.
package inspector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tenantrating/devtools/databases/sqlutil"
	"github.com/tenantrating/devtools/types"
)

// Catalog is the part of a database connector the inspector needs.
type Catalog interface {
	Scan(ctx context.Context, tableList []string) ([]types.Table, error)
	Sample(ctx context.Context, table string, limit int) (*types.SampleSet, error)
}

type Inspector struct {
	catalog Catalog
	limit   int
	tables  []string
	logger  *slog.Logger
}

type Option func(*Inspector)

// WithLimit caps the sample rows fetched per table.
func WithLimit(limit int) Option {
	return func(i *Inspector) {
		i.limit = sqlutil.SampleLimit(limit)
	}
}

// WithTables restricts inspection to the named tables.
func WithTables(tables ...string) Option {
	return func(i *Inspector) {
		i.tables = tables
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

func New(catalog Catalog, opts ...Option) *Inspector {
	i := &Inspector{
		catalog: catalog,
		limit:   sqlutil.DefaultSampleLimit,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect collects one report per table, in the order the engine lists them.
func (i *Inspector) Inspect(ctx context.Context) ([]types.TableReport, error) {
	tables, err := i.catalog.Scan(ctx, i.tables)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	i.logger.Debug("tables discovered", "count", len(tables))

	if missing := missingTables(i.tables, tables); len(missing) > 0 {
		return nil, fmt.Errorf("table %s not found", strings.Join(missing, ", "))
	}

	reports := make([]types.TableReport, 0, len(tables))
	for _, table := range tables {
		sample, err := i.catalog.Sample(ctx, table.Name, i.limit)
		if err != nil {
			return nil, err
		}
		i.logger.Debug("sampled table", "table", table.Name, "rows", len(sample.Rows))

		reports = append(reports, types.TableReport{
			Table:  table,
			Sample: *sample,
		})
	}
	return reports, nil
}

// missingTables returns the requested names Scan did not return.
func missingTables(requested []string, found []types.Table) []string {
	seen := make(map[string]bool, len(found))
	for _, t := range found {
		seen[t.Name] = true
	}
	var missing []string
	for _, name := range requested {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// Run inspects the database and writes the report to w in format
// ("text" or "json").
func (i *Inspector) Run(ctx context.Context, w io.Writer, dbName, format string) error {
	reports, err := i.Inspect(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "", FormatText:
		return RenderText(w, dbName, reports, i.limit)
	case FormatJSON:
		return RenderJSON(w, reports)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
