package types

type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// SampleSet holds rows in the order the engine returned them. Columns is
// the result column order, which every row follows.
type SampleSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type TableReport struct {
	Table  Table     `json:"table"`
	Sample SampleSet `json:"sample"`
}

type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

type TableDescription struct {
	Name        string    `json:"name"`
	Columns     []Column  `json:"columns"`
	RowCount    int64     `json:"row_count"`
	Sample      SampleSet `json:"sample"`
	Indexes     []Index   `json:"indexes,omitempty"`
	PrimaryKeys []string  `json:"primary_keys,omitempty"`
}
