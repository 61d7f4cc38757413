package inspector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
	"github.com/tenantrating/devtools/types"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	EmptyMarker = "(Empty)"
	NullText    = "NULL"

	cellJoiner = " | "
)

var (
	banner    = strings.Repeat("=", 40)
	tableRule = strings.Repeat("-", 20)
)

// CellText renders a scanned value the way it is printed in reports.
func CellText(v any) string {
	if v == nil {
		return NullText
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// RenderText writes the human readable report. Each table section lists
// the schema and either a header plus sample rows or EmptyMarker.
func RenderText(w io.Writer, dbName string, reports []types.TableReport, limit int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Database: %s\n", dbName)
	fmt.Fprintln(bw, banner)

	for _, r := range reports {
		fmt.Fprintf(bw, "\nTable: %s\n", r.Table.Name)
		fmt.Fprintln(bw, tableRule)

		fmt.Fprintln(bw, "Schema:")
		for _, col := range r.Table.Columns {
			fmt.Fprintf(bw, "  - %s (%s)\n", col.Name, col.Type)
		}

		fmt.Fprintf(bw, "\nData (First %d rows):\n", limit)
		if len(r.Sample.Rows) == 0 {
			fmt.Fprintln(bw, EmptyMarker)
		} else {
			header := strings.Join(r.Table.ColumnNames(), cellJoiner)
			fmt.Fprintln(bw, header)
			fmt.Fprintln(bw, strings.Repeat("-", len(header)))

			for _, row := range r.Sample.Rows {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = CellText(v)
				}
				fmt.Fprintln(bw, strings.Join(cells, cellJoiner))
			}
		}

		fmt.Fprintln(bw, banner)
	}

	return bw.Flush()
}

// RowsAsText renders each sample row as a column name to text map.
func RowsAsText(set types.SampleSet) []map[string]string {
	rows := make([]map[string]string, 0, len(set.Rows))
	for _, row := range set.Rows {
		m := make(map[string]string, len(row))
		for i, v := range row {
			if i < len(set.Columns) {
				m[set.Columns[i]] = CellText(v)
			}
		}
		rows = append(rows, m)
	}
	return rows
}

type jsonColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonTable struct {
	Name    string              `json:"name"`
	Columns []jsonColumn        `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// RenderJSON writes the reports as an indented JSON array, rows keyed by
// result column name.
func RenderJSON(w io.Writer, reports []types.TableReport) error {
	out := make([]jsonTable, 0, len(reports))
	for _, r := range reports {
		t := jsonTable{
			Name:    r.Table.Name,
			Columns: make([]jsonColumn, 0, len(r.Table.Columns)),
			Rows:    make([]map[string]string, 0, len(r.Sample.Rows)),
		}
		for _, col := range r.Table.Columns {
			t.Columns = append(t.Columns, jsonColumn{Name: col.Name, Type: col.Type})
		}
		t.Rows = append(t.Rows, RowsAsText(r.Sample)...)
		out = append(out, t)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return nil
}
