package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/tabledef/internal/config"
	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/JonMunkholm/tabledef/internal/rest"
	"github.com/JonMunkholm/tabledef/internal/store"
)

type fakeStore struct {
	mu       sync.Mutex
	result   *core.ResultSet
	applyErr error
	pingErr  error
	applied  []core.RowChange
}

func (f *fakeStore) Query(context.Context, string) (*core.ResultSet, error) {
	return f.result, nil
}

func (f *fakeStore) Apply(_ context.Context, _ string, changes []core.RowChange) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return 0, f.applyErr
	}
	f.applied = append(f.applied, changes...)
	return int64(len(changes)), nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Tables: config.TablesConfig{Servlet: "tables"},
		Rate:   config.RateLimitConfig{Enabled: false},
	}
}

func registerTables(t *testing.T) {
	t.Helper()
	core.Clear()
	t.Cleanup(core.Clear)

	orders, err := core.NewTableDefinition(
		[]core.Column{
			{Name: "id", DisplayName: "ID", DataType: core.DataNumber, EditType: core.EditNone},
			{Name: "customer", DataType: core.DataText, EditType: core.EditText},
			{Name: "amount", DataType: core.DataCurrency, EditType: core.EditText, Format: "#,##0.00"},
			{Name: "shipped", DataType: core.DataBoolean, EditType: core.EditCheckbox},
		},
		[]core.Filter{
			{ColumnName: "customer", Type: core.FilterText, Row: 0, Column: 0},
			{ColumnName: "amount", Type: core.FilterRange, Row: 0, Column: 1},
			{ColumnName: "shipped", Type: core.FilterCheckbox, Row: 1, Column: 0},
		},
	)
	if err != nil {
		t.Fatalf("NewTableDefinition() error = %v", err)
	}
	orders.Query = "select * from orders"
	orders.UpdateTable = "orders"
	orders.KeyFields = []string{"id"}

	report, err := core.NewTableDefinition(
		[]core.Column{{Name: "total", DataType: core.DataCurrency, EditType: core.EditNone}},
		nil,
	)
	if err != nil {
		t.Fatalf("NewTableDefinition() error = %v", err)
	}
	report.Query = "select sum(amount) as total from orders"

	core.Replace("orders", orders)
	core.Replace("report", report)
}

func ordersResult() *core.ResultSet {
	return &core.ResultSet{
		Columns: []string{"ID", "Customer", "Amount", "Shipped"},
		Rows: [][]string{
			{"1", "Acme Corp", "120.00", "true"},
			{"2", "Globex", "75.50", "false"},
			{"3", "Acme Labs", "900.00", ""},
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, st *fakeStore) (*rest.Client, *Server) {
	t.Helper()
	registerTables(t)

	srv := NewServer(core.NewService(st), cfg)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})

	client := rest.NewClient(ts.URL, cfg.Tables.Servlet, cfg.Security.Username, cfg.Security.Password)
	return client, srv
}

func wantHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var herr *rest.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("error = %v, want *rest.HTTPError", err)
	}
	if herr.StatusCode != status {
		t.Errorf("status = %d, want %d (%v)", herr.StatusCode, status, herr)
	}
	if code != "" && herr.Code != code {
		t.Errorf("code = %q, want %q", herr.Code, code)
	}
}

func TestServices(t *testing.T) {
	client, _ := newTestServer(t, testConfig(), &fakeStore{})

	got, err := client.Services(context.Background())
	if err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if strings.Join(got, ",") != "orders,report" {
		t.Errorf("Services() = %v", got)
	}
}

func TestTableInfo(t *testing.T) {
	client, _ := newTestServer(t, testConfig(), &fakeStore{})
	ctx := context.Background()

	info, err := client.TableInfo(ctx, "orders")
	if err != nil {
		t.Fatalf("TableInfo() error = %v", err)
	}
	if len(info.Columns) != 4 || info.Columns[0].DisplayName != "ID" {
		t.Errorf("Columns = %+v", info.Columns)
	}
	if len(info.Filters) != 3 || info.UpdateTable != "orders" {
		t.Errorf("info = %+v", info)
	}
	if len(info.Formats) != 1 || info.Formats[0].Pattern != "#,##0.00" {
		t.Errorf("Formats = %+v", info.Formats)
	}

	def, err := rest.ToDefinition(*info)
	if err != nil {
		t.Fatalf("ToDefinition() error = %v", err)
	}
	if def.FilterRows() != 2 {
		t.Errorf("FilterRows() = %d, want 2", def.FilterRows())
	}

	_, err = client.TableInfo(ctx, "missing")
	wantHTTPError(t, err, http.StatusNotFound, "TBL001")
}

func TestData(t *testing.T) {
	client, _ := newTestServer(t, testConfig(), &fakeStore{result: ordersResult()})
	ctx := context.Background()

	tests := []struct {
		name     string
		criteria map[string]string
		wantIDs  []string
	}{
		{"no criteria", nil, []string{"1", "2", "3"}},
		{"text prefix", map[string]string{"customer": "Acme"}, []string{"1", "3"}},
		{"text wildcard", map[string]string{"customer": "*Labs"}, []string{"3"}},
		{"range", map[string]string{"amount": "100..500"}, []string{"1"}},
		{"checkbox unchecked includes empty", map[string]string{"shipped": "false"}, []string{"2", "3"}},
		{"combined", map[string]string{"customer": "Acme", "amount": "..200"}, []string{"1"}},
		{"unknown filter ignored", map[string]string{"nope": "x"}, []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := client.Data(ctx, "orders", tt.criteria)
			if err != nil {
				t.Fatalf("Data() error = %v", err)
			}
			var ids []string
			for _, row := range rows {
				ids = append(ids, row[0])
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestData_Errors(t *testing.T) {
	client, _ := newTestServer(t, testConfig(), &fakeStore{result: ordersResult()})
	ctx := context.Background()

	_, err := client.Data(ctx, "orders", map[string]string{"amount": "lots..more"})
	wantHTTPError(t, err, http.StatusBadRequest, "VAL009")

	_, err = client.Data(ctx, "missing", nil)
	wantHTTPError(t, err, http.StatusNotFound, "TBL001")
}

func TestData_EmptyResultIsArray(t *testing.T) {
	client, _ := newTestServer(t, testConfig(), &fakeStore{result: ordersResult()})

	rows, err := client.Data(context.Background(), "orders", map[string]string{"customer": "Nobody"})
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %#v, want empty non-nil slice", rows)
	}
}

func TestUpdate(t *testing.T) {
	st := &fakeStore{}
	client, _ := newTestServer(t, testConfig(), st)

	ok, err := client.Update(context.Background(), "orders", []rest.UpdateInfo{
		{Action: "update", Keys: map[string]string{"id": "1"}, Values: map[string]string{"amount": "$1,250.00"}},
		{Action: "delete", Keys: map[string]string{"id": "2"}},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !ok {
		t.Error("Update() = false, want true")
	}
	if len(st.applied) != 2 {
		t.Fatalf("applied %d changes, want 2", len(st.applied))
	}
	if st.applied[0].Values[0].Value != "$1,250.00" {
		t.Errorf("value = %q", st.applied[0].Values[0].Value)
	}
}

func TestUpdate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		service    string
		updates    []rest.UpdateInfo
		applyErr   error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "read-only table",
			service:    "report",
			updates:    []rest.UpdateInfo{{Action: "insert", Values: map[string]string{"total": "1"}}},
			wantStatus: http.StatusConflict,
			wantCode:   "VAL005",
		},
		{
			name:       "missing key",
			service:    "orders",
			updates:    []rest.UpdateInfo{{Action: "update", Values: map[string]string{"customer": "x"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL003",
		},
		{
			name:       "invalid number",
			service:    "orders",
			updates:    []rest.UpdateInfo{{Action: "insert", Values: map[string]string{"amount": "lots"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL002",
		},
		{
			name:       "stale row",
			service:    "orders",
			updates:    []rest.UpdateInfo{{Action: "delete", Keys: map[string]string{"id": "9"}}},
			applyErr:   fmt.Errorf("change 0: %w", store.ErrRowNotFound),
			wantStatus: http.StatusConflict,
			wantCode:   "TBL003",
		},
		{
			name:       "duplicate key",
			service:    "orders",
			updates:    []rest.UpdateInfo{{Action: "insert", Values: map[string]string{"customer": "x"}}},
			applyErr:   errors.New(`duplicate key value violates unique constraint "orders_pkey"`),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "DB001",
		},
		{
			name:       "unknown service",
			service:    "missing",
			updates:    []rest.UpdateInfo{},
			wantStatus: http.StatusNotFound,
			wantCode:   "TBL001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, testConfig(), &fakeStore{applyErr: tt.applyErr})

			ok, err := client.Update(context.Background(), tt.service, tt.updates)
			if ok {
				t.Error("Update() = true, want false")
			}
			wantHTTPError(t, err, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestUpdate_InvalidBody(t *testing.T) {
	_, srv := newTestServer(t, testConfig(), &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/tables/orders/update", strings.NewReader(`{"action":`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "REQ003") {
		t.Errorf("body = %s, want REQ003", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{"store up", nil, http.StatusOK},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestServer(t, testConfig(), &fakeStore{pingErr: tt.pingErr})

			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), `"tables":2`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestBasicAuthProtectsServlet(t *testing.T) {
	cfg := testConfig()
	cfg.Security.Username = "admin"
	cfg.Security.Password = "secret"
	client, srv := newTestServer(t, cfg, &fakeStore{})

	if _, err := client.Services(context.Background()); err != nil {
		t.Fatalf("Services() with credentials error = %v", err)
	}

	client.Password = "wrong"
	_, err := client.Services(context.Background())
	wantHTTPError(t, err, http.StatusUnauthorized, "AUTH001")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200 without credentials", rec.Code)
	}
}

func TestUpdateRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, UpdateLimit: 1}
	client, _ := newTestServer(t, cfg, &fakeStore{})
	ctx := context.Background()

	updates := []rest.UpdateInfo{{Action: "delete", Keys: map[string]string{"id": "1"}}}
	if _, err := client.Update(ctx, "orders", updates); err != nil {
		t.Fatalf("first Update() error = %v", err)
	}

	_, err := client.Update(ctx, "orders", updates)
	wantHTTPError(t, err, http.StatusTooManyRequests, "RATE001")

	if _, err := client.TableInfo(ctx, "orders"); err != nil {
		t.Errorf("TableInfo() should not share the update budget: %v", err)
	}
}

func TestStartAfterShutdown(t *testing.T) {
	registerTables(t)
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	srv := NewServer(core.NewService(&fakeStore{}), cfg)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Errorf("Start() after Shutdown = %v, want nil", err)
	}
}
