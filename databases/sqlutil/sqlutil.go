// Package sqlutil holds the small pieces the engine connectors share.
package sqlutil

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/tenantrating/devtools/types"
)

// DefaultSampleLimit applies when a caller asks for zero or fewer rows.
const DefaultSampleLimit = 5

// QuoteIdent wraps name in quote, doubling any embedded quote characters.
func QuoteIdent(name string, quote string) string {
	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

// SampleLimit normalizes a caller supplied row limit.
func SampleLimit(limit int) int {
	if limit <= 0 {
		return DefaultSampleLimit
	}
	return limit
}

// SplitColumnList splits the comma separated column list an index query
// aggregates into one string. An empty list yields nil.
func SplitColumnList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	cols := strings.Split(s, ",")
	for i, c := range cols {
		cols[i] = strings.TrimSpace(c)
	}
	return cols
}

// CollectSample drains rows into a SampleSet, keeping column and row order.
func CollectSample(rows *sqlx.Rows) (*types.SampleSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("unable to read columns: %w", err)
	}

	set := &types.SampleSet{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("unable to scan row: %w", err)
		}
		set.Rows = append(set.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to iterate rows: %w", err)
	}

	return set, nil
}
