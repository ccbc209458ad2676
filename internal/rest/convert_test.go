package rest

import (
	"encoding/json"
	"testing"

	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition(t *testing.T) *core.TableDefinition {
	t.Helper()
	def, err := core.NewTableDefinition(
		[]core.Column{
			{Name: "id", DisplayName: "ID", DataType: core.DataNumber, EditType: core.EditNone},
			{Name: "status", DataType: core.DataText, EditType: core.EditDropdown, ValueQuery: "SELECT code FROM statuses"},
			{Name: "amount", DataType: core.DataCurrency, EditType: core.EditText, Format: "#,##0.00"},
		},
		[]core.Filter{
			{ColumnName: "status", Type: core.FilterDropdown, Row: 0, Column: 0},
			{ColumnName: "amount", DisplayName: "Total", Type: core.FilterRange, Row: 1, Column: 0},
		},
	)
	require.NoError(t, err)
	def.KeyFields = []string{"id"}
	def.UpdateTable = "orders"
	def.Query = "SELECT * FROM orders"
	return def
}

func TestFromDefinition(t *testing.T) {
	info := FromDefinition(sampleDefinition(t))

	require.Len(t, info.Columns, 3)
	assert.Equal(t, ColumnInfo{Name: "id", DisplayName: "ID", DataType: "Number", EditType: "None"}, info.Columns[0])
	assert.Equal(t, "SELECT code FROM statuses", info.Columns[1].ValueQuery)

	require.Len(t, info.Filters, 2)
	assert.Equal(t, FilterInfo{ColumnName: "amount", DisplayName: "Total", Type: "Range", Row: 1, Column: 0}, info.Filters[1])

	assert.Equal(t, []FormatInfo{{ColumnName: "amount", Pattern: "#,##0.00"}}, info.Formats)
	assert.Equal(t, []string{"id"}, info.KeyFields)
	assert.Equal(t, "orders", info.UpdateTable)
}

func TestFromDefinition_JSONShape(t *testing.T) {
	def, err := core.NewTableDefinition(nil, nil)
	require.NoError(t, err)

	buf, err := json.Marshal(FromDefinition(def))
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":[],"filters":[],"formats":[],"keyFields":[]}`, string(buf))
}

func TestToDefinition_RoundTrip(t *testing.T) {
	def := sampleDefinition(t)

	buf, err := json.Marshal(FromDefinition(def))
	require.NoError(t, err)

	var info TableInfo
	require.NoError(t, json.Unmarshal(buf, &info))

	got, err := ToDefinition(info)
	require.NoError(t, err)

	assert.Equal(t, def.Columns(), got.Columns())
	assert.Equal(t, def.Filters(), got.Filters())
	assert.Equal(t, def.KeyFields, got.KeyFields)
	assert.Equal(t, def.Query, got.Query)
	assert.Equal(t, def.UpdateTable, got.UpdateTable)
}

func TestToDefinition_FilterTypeFallback(t *testing.T) {
	info := FromDefinition(sampleDefinition(t))
	info.Filters[0].Type = "Slider"

	got, err := ToDefinition(info)
	require.NoError(t, err)

	f, ok := got.Filter("status")
	require.True(t, ok)
	assert.Equal(t, core.FilterText, f.Type)
}

func TestToDefinition_Errors(t *testing.T) {
	info := FromDefinition(sampleDefinition(t))
	info.Columns[0].DataType = "Integer"
	_, err := ToDefinition(info)
	assert.ErrorIs(t, err, core.ErrInvalidType)

	info = FromDefinition(sampleDefinition(t))
	info.Columns[2].EditType = ""
	_, err = ToDefinition(info)
	assert.ErrorIs(t, err, core.ErrInvalidType)

	info = FromDefinition(sampleDefinition(t))
	info.Columns = append(info.Columns, info.Columns[0])
	_, err = ToDefinition(info)
	assert.ErrorIs(t, err, core.ErrDuplicateColumn)

	info = FromDefinition(sampleDefinition(t))
	info.Columns[0].Name = "order id"
	_, err = ToDefinition(info)
	assert.ErrorIs(t, err, core.ErrInvalidColumnName)

	info = FromDefinition(sampleDefinition(t))
	info.KeyFields = []string{"id,name"}
	_, err = ToDefinition(info)
	assert.ErrorIs(t, err, core.ErrInvalidKeyField)
}

func TestToChanges(t *testing.T) {
	changes := ToChanges([]UpdateInfo{
		{Action: "update", Keys: map[string]string{"id": "1"}, Values: map[string]string{"status": "open"}},
		{Action: "delete", Keys: map[string]string{"id": "2"}},
	})

	require.Len(t, changes, 2)
	assert.Equal(t, core.ActionUpdate, changes[0].Action)
	assert.Equal(t, "open", changes[0].Values["status"])
	assert.Equal(t, core.ActionDelete, changes[1].Action)
}
