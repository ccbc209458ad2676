// Package store implements core.Store over PostgreSQL and SQLite.
package store

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrRowNotFound is returned when an update or delete matches no row.
var ErrRowNotFound = errors.New("no row matches key")

// placeholder renders the n-th (1-based) bind parameter.
type placeholder func(n int) string

func dollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

func questionPlaceholder(int) string { return "?" }

// quoteIdentifier quotes a SQL identifier, escaping embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteTable quotes each part of a possibly schema-qualified table name.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// buildStatement renders the SQL for one row change. It returns the field
// values in bind order.
func buildStatement(table string, ch core.RowChange, ph placeholder) (string, []core.FieldValue, error) {
	if table == "" {
		return "", nil, core.ErrReadOnly
	}

	var args []core.FieldValue
	bind := func(fv core.FieldValue) string {
		args = append(args, fv)
		return ph(len(args))
	}

	where := func() string {
		conds := make([]string, len(ch.Keys))
		for i, k := range ch.Keys {
			conds[i] = quoteIdentifier(k.Column) + " = " + bind(k)
		}
		return strings.Join(conds, " AND ")
	}

	switch ch.Action {
	case core.ActionInsert:
		if len(ch.Values) == 0 {
			return "", nil, errors.New("insert without values")
		}
		cols := make([]string, len(ch.Values))
		params := make([]string, len(ch.Values))
		for i, v := range ch.Values {
			cols[i] = quoteIdentifier(v.Column)
			params[i] = bind(v)
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteTable(table), strings.Join(cols, ", "), strings.Join(params, ", ")), args, nil

	case core.ActionUpdate:
		if len(ch.Values) == 0 || len(ch.Keys) == 0 {
			return "", nil, errors.New("update needs values and keys")
		}
		sets := make([]string, len(ch.Values))
		for i, v := range ch.Values {
			sets[i] = quoteIdentifier(v.Column) + " = " + bind(v)
		}
		return fmt.Sprintf("UPDATE %s SET %s WHERE %s",
			quoteTable(table), strings.Join(sets, ", "), where()), args, nil

	case core.ActionDelete:
		if len(ch.Keys) == 0 {
			return "", nil, errors.New("delete needs keys")
		}
		return fmt.Sprintf("DELETE FROM %s WHERE %s", quoteTable(table), where()), args, nil

	default:
		return "", nil, fmt.Errorf("unknown action %q", ch.Action)
	}
}

// FormatValue renders a scanned database value as grid text.
// NULL becomes the empty string.
func FormatValue(v any) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatFloat(val, 64)
	case float32:
		return formatFloat(float64(val), 32)
	case time.Time:
		return formatTime(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Numeric:
		if !val.Valid {
			return ""
		}
		if val.NaN {
			return "NaN"
		}
		dv, err := val.Value()
		if err != nil || dv == nil {
			return ""
		}
		return fmt.Sprint(dv)
	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return val.Time.Format("2006-01-02")
	case pgtype.Bool:
		if !val.Valid {
			return ""
		}
		return strconv.FormatBool(val.Bool)
	case pgtype.Text:
		if !val.Valid {
			return ""
		}
		return val.String
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatFloat(f float64, bits int) string {
	if math.Trunc(f) == f && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// formatTime renders dates without a clock as YYYY-MM-DD.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
