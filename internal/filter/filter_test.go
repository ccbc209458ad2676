package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/JonMunkholm/tabledef/internal/core"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name      string
		ft        core.FilterType
		criterion string
		value     string
		want      bool
	}{
		{"text empty criterion matches all", core.FilterText, "", "anything", true},
		{"text prefix", core.FilterText, "Ada", "Ada Lovelace", true},
		{"text anchored at start", core.FilterText, "Love", "Ada Lovelace", false},
		{"text wildcard", core.FilterText, "*Love", "Ada Lovelace", true},
		{"text inner wildcard", core.FilterText, "A*lace", "Ada Lovelace", true},
		{"text meta characters are literal", core.FilterText, "a.c", "abc", false},
		{"text literal dot", core.FilterText, "a.c", "a.c", true},
		{"text parentheses", core.FilterText, "(x", "(x)", true},
		{"text case-sensitive", core.FilterText, "ada", "Ada", false},

		{"dropdown single", core.FilterDropdown, "open", "open", true},
		{"dropdown set", core.FilterDropdown, "open, closed", "closed", true},
		{"dropdown exact only", core.FilterDropdown, "open", "opened", false},

		{"range closed", core.FilterRange, "10..20", "15", true},
		{"range inclusive bounds", core.FilterRange, "10..20", "20", true},
		{"range above", core.FilterRange, "10..20", "20.01", false},
		{"range open low", core.FilterRange, "..5", "-100", true},
		{"range open high", core.FilterRange, "5..", "$1,000", true},
		{"range exact", core.FilterRange, "7", "7.0", true},
		{"range non-numeric value", core.FilterRange, "0..10", "n/a", false},

		{"date within", core.FilterDate, "2024-01-01..2024-12-31", "2024-06-15", true},
		{"date before", core.FilterDate, "2024-01-01..", "2023-12-31", false},
		{"date lenient value", core.FilterDate, "..2024-01-31", "01/15/2024", true},
		{"date exact", core.FilterDate, "2024-02-29", "2024-02-29", true},
		{"date unparseable value", core.FilterDate, "2024-01-01..", "soon", false},

		{"checkbox true", core.FilterCheckbox, "true", "yes", true},
		{"checkbox false", core.FilterCheckbox, "false", "1", false},
		{"checkbox empty cell is unchecked", core.FilterCheckbox, "false", "", true},
		{"checkbox empty cell is not checked", core.FilterCheckbox, "true", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.ft, tt.criterion)
			if err != nil {
				t.Fatalf("Compile(%s, %q) error = %v", tt.ft, tt.criterion, err)
			}
			if got := m(tt.value); got != tt.want {
				t.Errorf("match(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	tests := []struct {
		ft        core.FilterType
		criterion string
	}{
		{core.FilterRange, "low..high"},
		{core.FilterRange, "1..x"},
		{core.FilterDate, "2024-13-01.."},
		{core.FilterDate, "..01/02/2024"},
		{core.FilterCheckbox, "maybe"},
	}

	for _, tt := range tests {
		if _, err := Compile(tt.ft, tt.criterion); !errors.Is(err, ErrInvalidCriterion) {
			t.Errorf("Compile(%s, %q) error = %v, want ErrInvalidCriterion", tt.ft, tt.criterion, err)
		}
	}
}

func TestApply(t *testing.T) {
	def, err := core.NewTableDefinition(
		[]core.Column{
			{Name: "name", DataType: core.DataText, EditType: core.EditText},
			{Name: "amount", DataType: core.DataNumber, EditType: core.EditText},
			{Name: "status", DataType: core.DataText, EditType: core.EditDropdown},
		},
		[]core.Filter{
			{ColumnName: "name", Type: core.FilterText, Row: 0, Column: 0},
			{ColumnName: "amount", Type: core.FilterRange, Row: 0, Column: 1},
			{ColumnName: "region", Type: core.FilterText, Row: 1, Column: 0},
		},
	)
	if err != nil {
		t.Fatalf("NewTableDefinition() error = %v", err)
	}

	rows := [][]string{
		{"Ada", "10", "open"},
		{"Alan", "50", "open"},
		{"Grace", "20", "closed"},
		{"Al"},
	}

	tests := []struct {
		name     string
		criteria map[string]string
		want     [][]string
	}{
		{
			name:     "no criteria",
			criteria: nil,
			want:     rows,
		},
		{
			name:     "single filter",
			criteria: map[string]string{"name": "A"},
			want:     [][]string{rows[0], rows[1], rows[3]},
		},
		{
			name:     "filters combine",
			criteria: map[string]string{"name": "A", "amount": "..20"},
			want:     [][]string{rows[0]},
		},
		{
			name:     "unknown and unfiltered names ignored",
			criteria: map[string]string{"status": "open", "nope": "x", "region": "north"},
			want:     rows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(def, tt.criteria, rows)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := Apply(def, map[string]string{"amount": "cheap"}, rows); !errors.Is(err, ErrInvalidCriterion) {
		t.Errorf("Apply() with bad range error = %v", err)
	}
}
