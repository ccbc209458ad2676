package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/tabledef/internal/rest"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// render writes v as JSON or YAML, or calls text for the text format.
func (a *app) render(w io.Writer, v any, text func(io.Writer) error) error {
	switch a.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// writeTableInfo prints a definition as column and filter tables.
func writeTableInfo(w io.Writer, info rest.TableInfo) error {
	formats := make(map[string]string, len(info.Formats))
	for _, f := range info.Formats {
		formats[f.ColumnName] = f.Pattern
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "COLUMN\tDISPLAY NAME\tDATA TYPE\tEDIT TYPE\tFORMAT\tVALUE QUERY")
	for _, c := range info.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name, c.DisplayName, c.DataType, c.EditType, dash(formats[c.Name]), dash(c.ValueQuery))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(info.Filters) > 0 {
		fmt.Fprintln(w)
		tw = newTable(w)
		fmt.Fprintln(tw, "ROW\tPOS\tFILTER\tDISPLAY NAME\tTYPE")
		for _, f := range info.Filters {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", f.Row, f.Column, f.ColumnName, f.DisplayName, f.Type)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Key fields:   %s\n", dash(strings.Join(info.KeyFields, " ")))
	if info.UpdateTable != "" {
		fmt.Fprintf(w, "Update table: %s\n", info.UpdateTable)
	} else {
		fmt.Fprintln(w, "Update table: - (read-only)")
	}
	fmt.Fprintf(w, "Query:        %s\n", dash(info.Query))
	return nil
}

// writeRows prints rows under headers followed by a row count.
func writeRows(w io.Writer, headers []string, rows [][]string) error {
	tw := newTable(w)
	if len(headers) > 0 {
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "(%s %s)\n", humanize.Comma(int64(len(rows))), plural(len(rows), "row", "rows"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
