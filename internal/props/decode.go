package props

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabledef/internal/core"
)

// Decoder turns a flat key/value mapping into a table definition.
//
// Missing or invalid column types and an unusable filter row count are
// structural and fail the decode. Bad filter entries are defects: they are
// logged, passed to Report, and defaulted so the rest of the table loads.
type Decoder struct {
	Logger *slog.Logger   // Defaults to slog.Default()
	Report func(d Defect) // Optional defect callback
}

// Decode decodes m using a Decoder with default settings.
func Decode(m map[string]string) (*core.TableDefinition, error) {
	var d Decoder
	return d.Decode(m)
}

// Decode builds a fresh definition from m. Structural problems are
// returned as *StructuralError.
func (d *Decoder) Decode(m map[string]string) (*core.TableDefinition, error) {
	columns, err := d.decodeColumns(m)
	if err != nil {
		return nil, err
	}

	def, err := core.NewTableDefinition(columns, nil)
	if err != nil {
		return nil, &StructuralError{Key: KeyColumns, Err: err}
	}

	if err := d.decodeFilters(m, def); err != nil {
		return nil, err
	}

	def.Query = m[KeyQuery]
	def.UpdateTable = m[KeyUpdateTable]
	def.KeyFields = splitKeyFields(m[KeyKeyFields])

	return def, nil
}

func (d *Decoder) decodeColumns(m map[string]string) ([]core.Column, error) {
	raw, ok := m[KeyColumns]
	if !ok {
		return nil, &StructuralError{Key: KeyColumns, Err: ErrMissingKey}
	}

	names := strings.Fields(raw)
	seen := make(map[string]bool, len(names))
	columns := make([]core.Column, 0, len(names))

	for _, name := range names {
		if seen[name] {
			return nil, &StructuralError{Key: KeyColumns, Value: name, Err: core.ErrDuplicateColumn}
		}
		seen[name] = true

		dtKey := columnKey(name, attrDataType)
		dtRaw, ok := m[dtKey]
		if !ok {
			return nil, &StructuralError{Key: dtKey, Err: ErrMissingKey}
		}
		dt, ok := core.ParseDataType(strings.TrimSpace(dtRaw))
		if !ok {
			return nil, &StructuralError{Key: dtKey, Value: dtRaw, Err: ErrInvalidDataType}
		}

		etKey := columnKey(name, attrEditType)
		etRaw, ok := m[etKey]
		if !ok {
			return nil, &StructuralError{Key: etKey, Err: ErrMissingKey}
		}
		et, ok := core.ParseEditType(strings.TrimSpace(etRaw))
		if !ok {
			return nil, &StructuralError{Key: etKey, Value: etRaw, Err: ErrInvalidEditType}
		}

		columns = append(columns, core.Column{
			Name:        name,
			DisplayName: m[columnKey(name, attrDisplayName)],
			DataType:    dt,
			EditType:    et,
			ValueQuery:  m[columnKey(name, attrValueQuery)],
			Format:      m[columnKey(name, attrFormat)],
		})
	}

	return columns, nil
}

func (d *Decoder) decodeFilters(m map[string]string, def *core.TableDefinition) error {
	raw, ok := m[KeyFilterRows]
	if !ok {
		return nil
	}

	rows, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || rows < 0 {
		return &StructuralError{Key: KeyFilterRows, Value: raw, Err: ErrInvalidCount}
	}

	for _, i := range bandIndexes(m, rows) {
		rowKey := filterRowKey(i)
		for j, name := range strings.Fields(m[rowKey]) {
			if _, dup := def.Filter(name); dup {
				d.defect(Defect{Key: rowKey, Column: name, Value: m[rowKey], Reason: "duplicate filter, first occurrence kept"})
				continue
			}

			f := core.Filter{
				ColumnName:  name,
				DisplayName: filterDisplayName(m, name),
				Type:        d.filterType(m, name),
				Row:         i,
				Column:      j,
			}
			if err := def.SetFilter(f); err != nil {
				return &StructuralError{Key: rowKey, Value: name, Err: err}
			}
		}
	}

	return nil
}

// bandIndexes returns, ascending, the band indexes below rows that have a
// filter.row<i> key. Bands without a key are empty, so only present keys
// are visited whatever filter.rows claims.
func bandIndexes(m map[string]string, rows int) []int {
	var idx []int
	for key := range m {
		suffix, ok := strings.CutPrefix(key, filterRowPrefix)
		if !ok {
			continue
		}
		i, err := strconv.Atoi(suffix)
		if err != nil || i < 0 || i >= rows || filterRowKey(i) != key {
			continue
		}
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}

// filterDisplayName resolves a filter label: its own key, then the raw
// column label, then the column name.
func filterDisplayName(m map[string]string, name string) string {
	if v := m[filterKey(name, attrDisplayName)]; v != "" {
		return v
	}
	if v := m[columnKey(name, attrDisplayName)]; v != "" {
		return v
	}
	return name
}

func (d *Decoder) filterType(m map[string]string, name string) core.FilterType {
	key := filterKey(name, attrType)
	raw, ok := m[key]
	if !ok {
		d.defect(Defect{Key: key, Column: name, Reason: "missing filter type, using Text"})
		return core.FilterText
	}
	ft, ok := core.ParseFilterType(strings.TrimSpace(raw))
	if !ok {
		d.defect(Defect{Key: key, Column: name, Value: raw, Reason: fmt.Sprintf("unknown filter type %q, using Text", raw)})
		return core.FilterText
	}
	return ft
}

func (d *Decoder) defect(df Defect) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("table definition defect",
		"key", df.Key,
		"column", df.Column,
		"value", df.Value,
		"reason", df.Reason,
	)
	if d.Report != nil {
		d.Report(df)
	}
}

func splitKeyFields(raw string) []string {
	fields := []string{}
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
