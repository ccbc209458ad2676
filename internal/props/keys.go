package props

import "strconv"

// Top-level keys of a table definition.
const (
	KeyColumns     = "columns"
	KeyFilterRows  = "filter.rows"
	KeyQuery       = "query"
	KeyUpdateTable = "updateTable"
	KeyKeyFields   = "keyFields"
)

// Per-column and per-filter attributes.
const (
	attrDisplayName = "displayName"
	attrDataType    = "dataType"
	attrEditType    = "editType"
	attrValueQuery  = "valueQuery"
	attrFormat      = "format"
	attrType        = "type"
)

func columnKey(name, attr string) string {
	return "column." + name + "." + attr
}

func filterKey(name, attr string) string {
	return "filter." + name + "." + attr
}

const filterRowPrefix = "filter.row"

func filterRowKey(row int) string {
	return filterRowPrefix + strconv.Itoa(row)
}
