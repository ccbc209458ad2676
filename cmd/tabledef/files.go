package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/tabledef/internal/props"
	"github.com/JonMunkholm/tabledef/internal/rest"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check definition files",
		Long: `Validate decodes each definition file and reports structural errors,
which stop a table from loading, and defects, which the loader repairs
(an unknown filter type becomes Text, a repeated filter is dropped).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0

			for _, path := range args {
				var defects []props.Defect
				d := props.Decoder{
					Logger: a.logger,
					Report: func(df props.Defect) { defects = append(defects, df) },
				}

				def, err := d.LoadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %v\n", err)
					continue
				}
				for _, df := range defects {
					fmt.Fprintf(out, "WARN %s: %s\n", path, df)
				}
				if strict && len(defects) > 0 {
					failed++
					continue
				}
				fmt.Fprintf(out, "ok   %s (%d columns, %d filters)\n", path, len(def.ColumnNames()), len(def.Filters()))
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", errInvalid, failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat defects as failures")
	return cmd
}

func newFmtCmd(a *app) *cobra.Command {
	var write, list bool

	cmd := &cobra.Command{
		Use:   "fmt FILE...",
		Short: "Rewrite definition files in canonical form",
		Long: `Fmt decodes each file and encodes it again: keys sorted, defaults
omitted, filter bands renumbered from zero. Defective entries are dropped,
exactly as the server would ignore them. Without -w or -l the result is
printed to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			d := props.Decoder{Logger: a.logger}

			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				m, err := props.Read(bytes.NewReader(raw))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				def, err := d.Decode(m)
				if err != nil {
					return fmt.Errorf("%w: %s: %v", errInvalid, path, err)
				}

				encoded := props.Encode(def)
				var buf bytes.Buffer
				if err := props.Write(&buf, encoded); err != nil {
					return err
				}
				changed := !bytes.Equal(raw, buf.Bytes())

				if list && changed {
					fmt.Fprintln(out, path)
				}
				switch {
				case write && changed:
					if err := props.WriteFile(path, encoded); err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
				case !write && !list:
					if _, err := out.Write(buf.Bytes()); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write result to the source file")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list files whose formatting differs")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print a definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := props.Decoder{Logger: a.logger}
			def, err := d.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", errInvalid, err)
			}

			info := rest.FromDefinition(def)
			return a.render(cmd.OutOrStdout(), info, func(w io.Writer) error {
				return writeTableInfo(w, info)
			})
		},
	}
}

func newPullCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "pull SERVICE",
		Short: "Save a served table definition as a .properties file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]
			c, err := a.client()
			if err != nil {
				return err
			}

			info, err := c.TableInfo(cmd.Context(), service)
			if err != nil {
				return err
			}
			def, err := rest.ToDefinition(*info)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", errInvalid, service, err)
			}

			if file == "" {
				file = service + props.Extensions[0]
			}
			if err := props.SaveFile(file, def); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d columns)\n", file, len(def.ColumnNames()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "output file (default: SERVICE.properties)")
	return cmd
}
