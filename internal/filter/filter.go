// Package filter evaluates filter-grid criteria against table rows.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/JonMunkholm/tabledef/internal/core"
)

// ErrInvalidCriterion is returned for criteria that cannot be compiled.
var ErrInvalidCriterion = errors.New("invalid filter criterion")

// DateLayout is the layout of Date filter bounds.
const DateLayout = "2006-01-02"

// Matcher reports whether a cell value satisfies a compiled criterion.
type Matcher func(value string) bool

func matchAll(string) bool { return true }

// Compile builds a Matcher for criterion under filter type t.
// An empty criterion matches every value for all types.
func Compile(t core.FilterType, criterion string) (Matcher, error) {
	criterion = strings.TrimSpace(criterion)
	if criterion == "" {
		return matchAll, nil
	}

	switch t {
	case core.FilterText:
		return compileText(criterion)
	case core.FilterDropdown:
		return compileDropdown(criterion), nil
	case core.FilterRange:
		return compileRange(criterion)
	case core.FilterDate:
		return compileDate(criterion)
	case core.FilterCheckbox:
		return compileCheckbox(criterion)
	default:
		return compileText(criterion)
	}
}

// compileText turns a wildcard pattern into an anchored regexp. '*' matches
// any run of characters and the pattern is open-ended on the right, so
// "ab" matches "abc". Other characters are literal.
func compileText(criterion string) (Matcher, error) {
	parts := strings.Split(criterion, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + ".*$")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCriterion, criterion, err)
	}
	return func(value string) bool { return re.MatchString(value) }, nil
}

func compileDropdown(criterion string) Matcher {
	allowed := make(map[string]bool)
	for _, v := range strings.Split(criterion, ",") {
		allowed[strings.TrimSpace(v)] = true
	}
	return func(value string) bool { return allowed[strings.TrimSpace(value)] }
}

// splitBounds splits "lo..hi"; a criterion without ".." is an exact bound.
func splitBounds(criterion string) (lo, hi string) {
	lo, hi, found := strings.Cut(criterion, "..")
	if !found {
		return criterion, criterion
	}
	return strings.TrimSpace(lo), strings.TrimSpace(hi)
}

func compileRange(criterion string) (Matcher, error) {
	loRaw, hiRaw := splitBounds(criterion)

	var lo, hi *float64
	if loRaw != "" {
		v, ok := core.ParseNumber(loRaw)
		if !ok {
			return nil, fmt.Errorf("%w: range bound %q", ErrInvalidCriterion, loRaw)
		}
		lo = &v
	}
	if hiRaw != "" {
		v, ok := core.ParseNumber(hiRaw)
		if !ok {
			return nil, fmt.Errorf("%w: range bound %q", ErrInvalidCriterion, hiRaw)
		}
		hi = &v
	}

	return func(value string) bool {
		n, ok := core.ParseNumber(value)
		if !ok {
			return false
		}
		return (lo == nil || n >= *lo) && (hi == nil || n <= *hi)
	}, nil
}

func compileDate(criterion string) (Matcher, error) {
	fromRaw, toRaw := splitBounds(criterion)

	var from, to *time.Time
	if fromRaw != "" {
		v, err := time.Parse(DateLayout, fromRaw)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q", ErrInvalidCriterion, fromRaw)
		}
		from = &v
	}
	if toRaw != "" {
		v, err := time.Parse(DateLayout, toRaw)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q", ErrInvalidCriterion, toRaw)
		}
		to = &v
	}

	return func(value string) bool {
		d, ok := core.ParseDate(value)
		if !ok {
			return false
		}
		return (from == nil || !d.Before(*from)) && (to == nil || !d.After(*to))
	}, nil
}

func compileCheckbox(criterion string) (Matcher, error) {
	want, ok := core.ParseBool(criterion)
	if !ok {
		return nil, fmt.Errorf("%w: checkbox %q", ErrInvalidCriterion, criterion)
	}
	return func(value string) bool {
		got, ok := core.ParseBool(value)
		if !ok {
			// Empty cells count as unchecked.
			return !want && strings.TrimSpace(value) == ""
		}
		return got == want
	}, nil
}

// Apply returns the rows matching every criterion. Criteria are keyed by
// filter column name; names without a filter in def are ignored, as are
// filters whose column is not part of the row layout.
func Apply(def *core.TableDefinition, criteria map[string]string, rows [][]string) ([][]string, error) {
	type check struct {
		col   int
		match Matcher
	}

	var checks []check
	for name, criterion := range criteria {
		f, ok := def.Filter(name)
		if !ok {
			continue
		}
		col, ok := def.ColumnIndex(name)
		if !ok {
			continue
		}
		m, err := Compile(f.Type, criterion)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", name, err)
		}
		checks = append(checks, check{col: col, match: m})
	}

	if len(checks) == 0 {
		return rows, nil
	}

	result := make([][]string, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, c := range checks {
			value := ""
			if c.col < len(row) {
				value = row[c.col]
			}
			if !c.match(value) {
				keep = false
				break
			}
		}
		if keep {
			result = append(result, row)
		}
	}
	return result, nil
}
