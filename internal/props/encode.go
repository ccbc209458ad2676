package props

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabledef/internal/core"
)

// Encode flattens def into key/value pairs that Decode reads back into an
// equal definition. Optional attributes are omitted rather than written
// empty; every band below the highest is written, empty ones as "".
func Encode(def *core.TableDefinition) map[string]string {
	m := make(map[string]string)

	m[KeyColumns] = strings.Join(def.ColumnNames(), " ")

	for _, c := range def.Columns() {
		m[columnKey(c.Name, attrDisplayName)] = c.DisplayName
		m[columnKey(c.Name, attrDataType)] = string(c.DataType)
		m[columnKey(c.Name, attrEditType)] = string(c.EditType)
		if c.ValueQuery != "" {
			m[columnKey(c.Name, attrValueQuery)] = c.ValueQuery
		}
		if c.Format != "" {
			m[columnKey(c.Name, attrFormat)] = c.Format
		}
	}

	grid := def.FilterGrid()
	m[KeyFilterRows] = strconv.Itoa(len(grid))
	for i, band := range grid {
		names := make([]string, len(band))
		for j, f := range band {
			names[j] = f.ColumnName

			m[filterKey(f.ColumnName, attrType)] = string(f.Type)
			if f.DisplayName != defaultFilterLabel(def, f.ColumnName) {
				m[filterKey(f.ColumnName, attrDisplayName)] = f.DisplayName
			}
		}
		m[filterRowKey(i)] = strings.Join(names, " ")
	}

	m[KeyKeyFields] = strings.Join(def.KeyFields, ",")
	if def.UpdateTable != "" {
		m[KeyUpdateTable] = def.UpdateTable
	}
	if def.Query != "" {
		m[KeyQuery] = def.Query
	}

	return m
}

// defaultFilterLabel is the label Decode assigns when no filter
// displayName key is present.
func defaultFilterLabel(def *core.TableDefinition, name string) string {
	if c, ok := def.Column(name); ok {
		return c.DisplayName
	}
	return name
}
