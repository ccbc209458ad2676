package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/tabledef/internal/config"
	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/JonMunkholm/tabledef/internal/props"
	"github.com/JonMunkholm/tabledef/internal/rest"
	"github.com/JonMunkholm/tabledef/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const ordersFile = `# orders table
columns = id customer amount
column.id.displayName = ID
column.id.dataType = Number
column.id.editType = None
column.customer.dataType = Text
column.customer.editType = Text
column.amount.dataType = Currency
column.amount.editType = Text
column.amount.format = #,##0.00
filter.rows = 1
filter.row0 = customer amount
filter.customer.type = Text
filter.amount.type = Range
keyFields = id
query = select id, customer, amount from orders
updateTable = orders
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "orders.properties", ordersFile)
	defective := writeFile(t, "odd.properties", strings.Replace(ordersFile, "filter.amount.type = Range", "filter.amount.type = Slider", 1))
	broken := writeFile(t, "broken.properties", strings.Replace(ordersFile, "column.id.dataType = Number", "column.id.dataType = Integer", 1))

	out, err := execute(t, "", "validate", good, defective)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+good+" (3 columns, 2 filters)")
	assert.Contains(t, out, "WARN "+defective+": filter.amount.type")

	out, err = execute(t, "", "validate", "--strict", defective)
	require.ErrorIs(t, err, errInvalid)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.NotContains(t, out, "ok ")

	out, err = execute(t, "", "validate", good, broken)
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "FAIL "+broken)
	assert.Contains(t, err.Error(), "1 of 2 files")
}

func TestFmt(t *testing.T) {
	path := writeFile(t, "orders.properties", ordersFile)

	out, err := execute(t, "", "fmt", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# "+props.HeaderComment))
	assert.Contains(t, out, "columns=id customer amount")

	out, err = execute(t, "", "fmt", "-l", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	_, err = execute(t, "", "fmt", "-w", path)
	require.NoError(t, err)

	out, err = execute(t, "", "fmt", "-l", path)
	require.NoError(t, err)
	assert.Empty(t, out, "formatted file should be stable")

	def, err := props.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "customer", "amount"}, def.ColumnNames())
	assert.Equal(t, "orders", def.UpdateTable)
}

func TestShow(t *testing.T) {
	path := writeFile(t, "orders.properties", ordersFile)

	out, err := execute(t, "", "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "COLUMN")
	assert.Contains(t, out, "#,##0.00")
	assert.Contains(t, out, "Key fields:   id")
	assert.Contains(t, out, "Update table: orders")

	out, err = execute(t, "", "show", "-o", "json", path)
	require.NoError(t, err)
	var info rest.TableInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Len(t, info.Columns, 3)
	assert.Len(t, info.Filters, 2)

	out, err = execute(t, "", "show", "-o", "yaml", path)
	require.NoError(t, err)
	var fromYAML rest.TableInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, info, fromYAML)

	_, err = execute(t, "", "show", "-o", "xml", path)
	require.ErrorIs(t, err, errUsage)
}

type memStore struct {
	applied []core.RowChange
}

func (m *memStore) Query(context.Context, string) (*core.ResultSet, error) {
	return &core.ResultSet{
		Columns: []string{"id", "customer", "amount"},
		Rows: [][]string{
			{"1", "Acme", "1200.00"},
			{"2", "Globex", "75.50"},
		},
	}, nil
}

func (m *memStore) Apply(_ context.Context, _ string, changes []core.RowChange) (int64, error) {
	m.applied = append(m.applied, changes...)
	return int64(len(changes)), nil
}

// startServer serves the orders definition and returns a profile file
// pointing at it.
func startServer(t *testing.T) (string, *memStore) {
	t.Helper()
	core.Clear()
	t.Cleanup(core.Clear)

	def, err := props.LoadFile(writeFile(t, "orders.properties", ordersFile))
	require.NoError(t, err)
	core.Replace("orders", def)

	st := &memStore{}
	cfg := &config.Config{
		Tables:   config.TablesConfig{Servlet: "tables"},
		Security: config.SecurityConfig{Username: "admin", Password: "secret"},
	}
	srv := web.NewServer(core.NewService(st), cfg)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	profile := writeFile(t, "profile.yaml", "url: "+ts.URL+"\nservlet: tables\nusername: admin\npassword: secret\ntimeout: 5s\n")
	return profile, st
}

func TestRemoteCommands(t *testing.T) {
	profile, st := startServer(t)

	out, err := execute(t, "", "--config", profile, "services")
	require.NoError(t, err)
	assert.Equal(t, "orders\n", out)

	out, err = execute(t, "", "--config", profile, "info", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "Update table: orders")

	out, err = execute(t, "", "--config", profile, "data", "orders", "customer=Acme")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "1200.00")
	assert.NotContains(t, out, "Globex")
	assert.Contains(t, out, "(1 row)")

	out, err = execute(t, "", "--config", profile, "-o", "json", "data", "orders")
	require.NoError(t, err)
	var rows [][]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 2)

	changes := `[{"action":"update","keys":{"id":"2"},"values":{"amount":"80"}},{"action":"delete","keys":{"id":"1"}}]`
	out, err = execute(t, changes, "--config", profile, "update", "orders")
	require.NoError(t, err)
	assert.Equal(t, "applied 2 changes to orders\n", out)
	assert.Len(t, st.applied, 2)

	_, err = execute(t, `[{"action":"update","values":{"amount":"80"}}]`, "--config", profile, "update", "orders", "-")
	var herr *rest.HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusBadRequest, herr.StatusCode)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestRemoteCommands_FlagsOverrideProfile(t *testing.T) {
	profile, _ := startServer(t)

	_, err := execute(t, "", "--config", profile, "--password", "wrong", "services")
	var herr *rest.HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusUnauthorized, herr.StatusCode)
}

func TestPull(t *testing.T) {
	profile, _ := startServer(t)
	target := filepath.Join(t.TempDir(), "pulled.properties")

	out, err := execute(t, "", "--config", profile, "pull", "orders", "-f", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+target+" (3 columns)")

	def, err := props.LoadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "customer", "amount"}, def.ColumnNames())
	col, ok := def.Column("amount")
	require.True(t, ok)
	assert.Equal(t, "#,##0.00", col.Format)
}

func TestMissingURL(t *testing.T) {
	t.Setenv("TABLEDEF_URL", "")
	profile := writeFile(t, "empty.yaml", "servlet: tables\n")

	_, err := execute(t, "", "--config", profile, "services")
	require.ErrorIs(t, err, errUsage)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestHint(t *testing.T) {
	err := fmt.Errorf("orders.properties: %w", props.ErrMissingKey)
	assert.Equal(t, "Table definition is incomplete (Code: DEF001). Add the missing key to the definition file", hint(err))

	assert.Empty(t, hint(errors.New("something odd")))
	assert.Empty(t, hint(&rest.HTTPError{StatusCode: 404, Message: "Table not found"}))
}

func TestParseCriteria(t *testing.T) {
	got, err := parseCriteria([]string{"customer=Acme*", "amount=1..=2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"customer": "Acme*", "amount": "1..=2"}, got)

	_, err = parseCriteria([]string{"customer"})
	assert.ErrorIs(t, err, errUsage)
}
