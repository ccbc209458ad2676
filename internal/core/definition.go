package core

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"
)

// MaxFilterRows bounds the height of the filter grid.
const MaxFilterRows = 1024

// Definition construction errors.
var (
	ErrEmptyColumnName   = errors.New("column name must not be empty")
	ErrInvalidColumnName = errors.New("column name must not contain whitespace")
	ErrInvalidKeyField   = errors.New("invalid key field")
	ErrDuplicateColumn   = errors.New("duplicate column name")
	ErrDuplicateFilter   = errors.New("duplicate filter for column")
	ErrInvalidPosition   = errors.New("invalid filter position")
	ErrInvalidType       = errors.New("invalid type")
	ErrColumnNotFound    = errors.New("column not found")
)

// TableDefinition is the configuration of a table for the editing UI:
// its ordered columns, a filter grid, and the queries backing it.
//
// Column order is declaration order and display order. Filters are kept
// as a flat set keyed by column name; the grid is derived on demand.
type TableDefinition struct {
	columns []Column
	index   map[string]int
	filters map[string]Filter

	KeyFields   []string // Primary key of UpdateTable, in order
	Query       string   // Data retrieval query, opaque
	UpdateTable string   // Writable target; empty means read-only
}

// NewTableDefinition builds a definition from columns and filters.
// Empty display names default to the column name (for filters, to the
// column's display name). Duplicate column names, duplicate filters,
// out-of-range or shared grid cells, and unknown enum values are rejected.
// Gaps between filters of one band are closed: a lone filter at (0, 2)
// is stored at (0, 0).
func NewTableDefinition(columns []Column, filters []Filter) (*TableDefinition, error) {
	def := &TableDefinition{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
		filters: make(map[string]Filter, len(filters)),
	}

	for _, c := range columns {
		if err := def.AddColumn(c); err != nil {
			return nil, err
		}
	}

	cells := make(map[[2]int]string, len(filters))
	for _, f := range filters {
		if _, exists := def.filters[f.ColumnName]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFilter, f.ColumnName)
		}
		f, err := def.checkFilter(f)
		if err != nil {
			return nil, err
		}
		cell := [2]int{f.Row, f.Column}
		if other, taken := cells[cell]; taken {
			return nil, fmt.Errorf("%w: (%d, %d) already holds %s", ErrInvalidPosition, f.Row, f.Column, other)
		}
		cells[cell] = f.ColumnName
		def.filters[f.ColumnName] = f
	}
	def.compact()

	return def, nil
}

// ValidateKeyFields checks that every key field can be written to and read
// back from the comma-separated keyFields list.
func (d *TableDefinition) ValidateKeyFields() error {
	for _, field := range d.KeyFields {
		if field == "" || strings.Contains(field, ",") || strings.TrimSpace(field) != field {
			return fmt.Errorf("%w: %q", ErrInvalidKeyField, field)
		}
	}
	return nil
}

// checkName rejects names that cannot appear in a space-separated list.
func checkName(name string) error {
	if name == "" {
		return ErrEmptyColumnName
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("%w: %q", ErrInvalidColumnName, name)
	}
	return nil
}

// Column returns the column with the given name.
func (d *TableDefinition) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// ColumnIndex returns the position of the named column in column order.
func (d *TableDefinition) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Columns returns a copy of the columns in declaration order.
func (d *TableDefinition) Columns() []Column {
	return slices.Clone(d.columns)
}

// ColumnNames returns the column names in declaration order.
func (d *TableDefinition) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Filter returns the filter for the given column name.
// The column itself need not exist in the definition.
func (d *TableDefinition) Filter(columnName string) (Filter, bool) {
	f, ok := d.filters[columnName]
	return f, ok
}

// Filters returns all filters ordered by row, then column.
func (d *TableDefinition) Filters() []Filter {
	result := make([]Filter, 0, len(d.filters))
	for _, f := range d.filters {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Row != result[j].Row {
			return result[i].Row < result[j].Row
		}
		return result[i].Column < result[j].Column
	})
	return result
}

// FilterRows returns the number of filter bands: one more than the
// highest row in use, or zero without filters.
func (d *TableDefinition) FilterRows() int {
	rows := 0
	for _, f := range d.filters {
		if f.Row+1 > rows {
			rows = f.Row + 1
		}
	}
	return rows
}

// FilterGrid returns the filters grouped into bands. Every band below
// FilterRows is present, possibly empty, and sorted by column.
func (d *TableDefinition) FilterGrid() [][]Filter {
	grid := make([][]Filter, d.FilterRows())
	for _, f := range d.Filters() {
		grid[f.Row] = append(grid[f.Row], f)
	}
	return grid
}

// ReadOnly reports whether the table has no writable target.
func (d *TableDefinition) ReadOnly() bool {
	return d.UpdateTable == ""
}

// AddColumn appends a column.
func (d *TableDefinition) AddColumn(c Column) error {
	if err := checkName(c.Name); err != nil {
		return err
	}
	if _, exists := d.index[c.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, c.Name)
	}
	if !c.DataType.Valid() {
		return fmt.Errorf("%w: data type %q for column %s", ErrInvalidType, c.DataType, c.Name)
	}
	if !c.EditType.Valid() {
		return fmt.Errorf("%w: edit type %q for column %s", ErrInvalidType, c.EditType, c.Name)
	}
	if c.DisplayName == "" {
		c.DisplayName = c.Name
	}

	d.index[c.Name] = len(d.columns)
	d.columns = append(d.columns, c)
	return nil
}

// RemoveColumn deletes a column and its filter.
// Returns false if no such column exists.
func (d *TableDefinition) RemoveColumn(name string) bool {
	i, ok := d.index[name]
	if !ok {
		return false
	}
	d.columns = slices.Delete(d.columns, i, i+1)
	delete(d.filters, name)
	d.reindex()
	d.compact()
	return true
}

// RenameColumn changes a column's name and re-keys its filter.
func (d *TableDefinition) RenameColumn(oldName, newName string) error {
	i, ok := d.index[oldName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, oldName)
	}
	if err := checkName(newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if _, exists := d.index[newName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, newName)
	}
	if _, exists := d.filters[newName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFilter, newName)
	}

	d.columns[i].Name = newName
	if d.columns[i].DisplayName == oldName {
		d.columns[i].DisplayName = newName
	}
	if f, ok := d.filters[oldName]; ok {
		delete(d.filters, oldName)
		f.ColumnName = newName
		if f.DisplayName == oldName {
			f.DisplayName = newName
		}
		d.filters[newName] = f
	}
	for k, field := range d.KeyFields {
		if field == oldName {
			d.KeyFields[k] = newName
		}
	}
	d.reindex()
	return nil
}

// MoveColumn moves the named column to position to, shifting the others.
func (d *TableDefinition) MoveColumn(name string, to int) error {
	from, ok := d.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	if to < 0 || to >= len(d.columns) {
		return fmt.Errorf("column position %d out of range", to)
	}
	c := d.columns[from]
	d.columns = slices.Delete(d.columns, from, from+1)
	d.columns = slices.Insert(d.columns, to, c)
	d.reindex()
	return nil
}

// SetFilter adds or replaces the filter for f.ColumnName. A filter placed
// on an occupied cell goes before the occupant, which moves right.
func (d *TableDefinition) SetFilter(f Filter) error {
	f, err := d.checkFilter(f)
	if err != nil {
		return err
	}
	delete(d.filters, f.ColumnName)
	for name, other := range d.filters {
		if other.Row == f.Row && other.Column >= f.Column {
			other.Column++
			d.filters[name] = other
		}
	}
	d.filters[f.ColumnName] = f
	d.compact()
	return nil
}

// checkFilter validates f and fills in its default display name.
func (d *TableDefinition) checkFilter(f Filter) (Filter, error) {
	if err := checkName(f.ColumnName); err != nil {
		return f, err
	}
	if f.Row < 0 || f.Row >= MaxFilterRows || f.Column < 0 {
		return f, fmt.Errorf("%w: (%d, %d) for %s", ErrInvalidPosition, f.Row, f.Column, f.ColumnName)
	}
	if !f.Type.Valid() {
		return f, fmt.Errorf("%w: filter type %q for %s", ErrInvalidType, f.Type, f.ColumnName)
	}
	if f.DisplayName == "" {
		f.DisplayName = f.ColumnName
		if c, ok := d.Column(f.ColumnName); ok {
			f.DisplayName = c.DisplayName
		}
	}
	return f, nil
}

// RemoveFilter deletes the filter for a column.
// Returns false if the column had no filter.
func (d *TableDefinition) RemoveFilter(columnName string) bool {
	if _, ok := d.filters[columnName]; !ok {
		return false
	}
	delete(d.filters, columnName)
	d.compact()
	return true
}

// compact renumbers each band's filters 0..n-1, keeping their order.
func (d *TableDefinition) compact() {
	for _, band := range d.FilterGrid() {
		for j, f := range band {
			if f.Column != j {
				f.Column = j
				d.filters[f.ColumnName] = f
			}
		}
	}
}

func (d *TableDefinition) reindex() {
	clear(d.index)
	for i, c := range d.columns {
		d.index[c.Name] = i
	}
}
