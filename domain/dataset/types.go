package dataset

// ColumnType classifies a column for analysis purposes
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeDatetime    ColumnType = "datetime"
	TypeCategorical ColumnType = "categorical"
)

// Table is a column-oriented view of one uploaded dataset. Cells are kept
// as raw strings; numeric coercion happens at analysis time so that dirty
// values surface as missing instead of failing the load.
type Table struct {
	Name    string
	Columns []string
	Cells   map[string][]string
}

// RowCount returns the number of rows in the table
func (t *Table) RowCount() int {
	for _, col := range t.Columns {
		return len(t.Cells[col])
	}
	return 0
}

// Column returns the raw values of one column, or nil if it does not exist
func (t *Table) Column(name string) []string {
	return t.Cells[name]
}

// HasColumn reports whether the table contains the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Cells[name]
	return ok
}

// Schema returns the column name list, the ground truth for the insight
// validator's schema gate
func (t *Table) Schema() []string {
	out := make([]string, len(t.Columns))
	copy(out, t.Columns)
	return out
}

// Info is the metadata returned when listing datasets in a workspace
type Info struct {
	Name     string `json:"name"`
	SizeByte int64  `json:"size_bytes"`
	Rows     int    `json:"rows,omitempty"`
	Columns  int    `json:"columns,omitempty"`
}
