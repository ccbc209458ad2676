package rest

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/tabledef/internal/core"
)

// FromDefinition renders def in its wire form. Collections are never nil
// so they encode as JSON arrays.
func FromDefinition(def *core.TableDefinition) TableInfo {
	info := TableInfo{
		Columns:     []ColumnInfo{},
		Filters:     []FilterInfo{},
		Formats:     []FormatInfo{},
		KeyFields:   append([]string{}, def.KeyFields...),
		Query:       def.Query,
		UpdateTable: def.UpdateTable,
	}

	for _, c := range def.Columns() {
		info.Columns = append(info.Columns, ColumnInfo{
			Name:        c.Name,
			DisplayName: c.DisplayName,
			DataType:    string(c.DataType),
			EditType:    string(c.EditType),
			ValueQuery:  c.ValueQuery,
		})
		if c.Format != "" {
			info.Formats = append(info.Formats, FormatInfo{ColumnName: c.Name, Pattern: c.Format})
		}
	}

	for _, f := range def.Filters() {
		info.Filters = append(info.Filters, FilterInfo{
			ColumnName:  f.ColumnName,
			DisplayName: f.DisplayName,
			Type:        string(f.Type),
			Row:         f.Row,
			Column:      f.Column,
		})
	}

	return info
}

// ToDefinition builds a definition from its wire form. Column types must
// resolve; an unknown filter type is logged and falls back to Text.
// Formats for unknown columns are ignored.
func ToDefinition(info TableInfo) (*core.TableDefinition, error) {
	formats := make(map[string]string, len(info.Formats))
	for _, f := range info.Formats {
		formats[f.ColumnName] = f.Pattern
	}

	columns := make([]core.Column, 0, len(info.Columns))
	for _, c := range info.Columns {
		dt, ok := core.ParseDataType(c.DataType)
		if !ok {
			return nil, fmt.Errorf("column %s: %w: data type %q", c.Name, core.ErrInvalidType, c.DataType)
		}
		et, ok := core.ParseEditType(c.EditType)
		if !ok {
			return nil, fmt.Errorf("column %s: %w: edit type %q", c.Name, core.ErrInvalidType, c.EditType)
		}
		columns = append(columns, core.Column{
			Name:        c.Name,
			DisplayName: c.DisplayName,
			DataType:    dt,
			EditType:    et,
			ValueQuery:  c.ValueQuery,
			Format:      formats[c.Name],
		})
	}

	filters := make([]core.Filter, 0, len(info.Filters))
	for _, f := range info.Filters {
		ft, ok := core.ParseFilterType(f.Type)
		if !ok {
			slog.Warn("unknown filter type, using Text", "column", f.ColumnName, "value", f.Type)
			ft = core.FilterText
		}
		filters = append(filters, core.Filter{
			ColumnName:  f.ColumnName,
			DisplayName: f.DisplayName,
			Type:        ft,
			Row:         f.Row,
			Column:      f.Column,
		})
	}

	def, err := core.NewTableDefinition(columns, filters)
	if err != nil {
		return nil, err
	}
	def.KeyFields = append([]string{}, info.KeyFields...)
	if err := def.ValidateKeyFields(); err != nil {
		return nil, err
	}
	def.Query = info.Query
	def.UpdateTable = info.UpdateTable
	return def, nil
}
