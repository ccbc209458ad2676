package core

import "context"

// DataType is the stored type of a column's values.
type DataType string

const (
	DataText     DataType = "Text"
	DataNumber   DataType = "Number"
	DataCurrency DataType = "Currency"
	DataDate     DataType = "Date"
	DataBoolean  DataType = "Boolean"
)

var dataTypes = map[DataType]bool{
	DataText:     true,
	DataNumber:   true,
	DataCurrency: true,
	DataDate:     true,
	DataBoolean:  true,
}

// ParseDataType resolves s against the closed set of data types.
// Matching is exact; the second result is false for unknown symbols.
func ParseDataType(s string) (DataType, bool) {
	dt := DataType(s)
	return dt, dataTypes[dt]
}

// Valid reports whether d is one of the declared data types.
func (d DataType) Valid() bool { return dataTypes[d] }

// Numeric reports whether values of this type are parsed as numbers.
func (d DataType) Numeric() bool { return d == DataNumber || d == DataCurrency }

// EditType is the input widget class used to edit a column.
// It is independent of DataType.
type EditType string

const (
	EditNone     EditType = "None"
	EditText     EditType = "Text"
	EditDropdown EditType = "Dropdown"
	EditCheckbox EditType = "Checkbox"
	EditDate     EditType = "Date"
)

var editTypes = map[EditType]bool{
	EditNone:     true,
	EditText:     true,
	EditDropdown: true,
	EditCheckbox: true,
	EditDate:     true,
}

// ParseEditType resolves s against the closed set of edit types.
func ParseEditType(s string) (EditType, bool) {
	et := EditType(s)
	return et, editTypes[et]
}

// Valid reports whether e is one of the declared edit types.
func (e EditType) Valid() bool { return editTypes[e] }

// Editable reports whether cells of this edit type accept user input.
func (e EditType) Editable() bool { return e != EditNone }

// FilterType selects how a filter matches row values.
type FilterType string

const (
	FilterText     FilterType = "Text"
	FilterDropdown FilterType = "Dropdown"
	FilterRange    FilterType = "Range"
	FilterDate     FilterType = "Date"
	FilterCheckbox FilterType = "Checkbox"
)

var filterTypes = map[FilterType]bool{
	FilterText:     true,
	FilterDropdown: true,
	FilterRange:    true,
	FilterDate:     true,
	FilterCheckbox: true,
}

// ParseFilterType resolves s against the closed set of filter types.
// Callers decide the fallback; decoders use FilterText.
func ParseFilterType(s string) (FilterType, bool) {
	ft := FilterType(s)
	return ft, filterTypes[ft]
}

// Valid reports whether f is one of the declared filter types.
func (f FilterType) Valid() bool { return filterTypes[f] }

// Column describes one column of a table as shown in the editing UI.
type Column struct {
	Name        string   // Stable identifier, unique within a table
	DisplayName string   // Human label; defaults to Name
	DataType    DataType // Stored value type
	EditType    EditType // Input widget class
	ValueQuery  string   // Optional query computing legal values; empty means free entry
	Format      string   // Optional display pattern
}

// HasValueQuery reports whether the column's legal values are computed.
func (c Column) HasValueQuery() bool { return c.ValueQuery != "" }

// Filter places a row filter for one column in the filter grid.
type Filter struct {
	ColumnName  string     // Column the filter applies to
	DisplayName string     // Label; defaults to the column's display name
	Type        FilterType // Matching strategy
	Row         int        // Zero-based band index
	Column      int        // Zero-based position within the band
}

// ChangeAction is the kind of row change in an update batch.
type ChangeAction string

const (
	ActionInsert ChangeAction = "insert"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// Change is a single row change requested by a client.
// Keys identify the row by key field; Values carry new cell contents by column name.
type Change struct {
	Action ChangeAction
	Keys   map[string]string
	Values map[string]string
}

// FieldValue is a typed cell value ready to be bound by a Store.
// An empty Value is written as NULL.
type FieldValue struct {
	Column string
	Type   DataType
	Value  string
}

// RowChange is a validated Change with keys and values in a stable order.
type RowChange struct {
	Action ChangeAction
	Keys   []FieldValue // Ordered as the definition's key fields
	Values []FieldValue // Ordered as the definition's columns
}

// ResultSet is the text rendering of a query result.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Store is the backing store a Service reads table data from and writes
// updates to. Queries are passed through verbatim.
type Store interface {
	Query(ctx context.Context, query string) (*ResultSet, error)
	Apply(ctx context.Context, table string, changes []RowChange) (int64, error)
}
