package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/tabledef/internal/rest"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newServicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the services a server offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			services, err := c.Services(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), services, func(w io.Writer) error {
				for _, s := range services {
					fmt.Fprintln(w, s)
				}
				return nil
			})
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info SERVICE",
		Short: "Print a served table definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			info, err := c.TableInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), info, func(w io.Writer) error {
				return writeTableInfo(w, *info)
			})
		},
	}
}

func newDataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "data SERVICE [COLUMN=CRITERION...]",
		Short: "Fetch a service's rows",
		Long: `Data fetches rows, narrowed by filter criteria on filtered columns:

  Text      prefix match, * is a wildcard       name=Acme*
  Dropdown  comma separated values              status=open,held
  Range     min..max, either side optional      amount=100..500
  Date      from..to as YYYY-MM-DD              due=2024-01-01..
  Checkbox  true or false                       shipped=false`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]
			criteria, err := parseCriteria(args[1:])
			if err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			rows, err := c.Data(cmd.Context(), service, criteria)
			if err != nil {
				return err
			}
			if a.output != "text" {
				return a.render(cmd.OutOrStdout(), rows, nil)
			}

			info, err := c.TableInfo(cmd.Context(), service)
			if err != nil {
				return err
			}
			headers := make([]string, len(info.Columns))
			for i, col := range info.Columns {
				headers[i] = col.DisplayName
			}
			return writeRows(cmd.OutOrStdout(), headers, rows)
		},
	}
}

// parseCriteria turns COLUMN=CRITERION arguments into a criteria map.
func parseCriteria(args []string) (map[string]string, error) {
	criteria := make(map[string]string, len(args))
	for _, arg := range args {
		name, criterion, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: invalid criterion %q (expected COLUMN=CRITERION)", errUsage, arg)
		}
		criteria[name] = criterion
	}
	return criteria, nil
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update SERVICE [FILE|-]",
		Short: "Send a batch of row changes",
		Long: `Update posts a JSON array of changes, read from FILE or stdin:

  [
    {"action": "update", "keys": {"id": "7"}, "values": {"status": "held"}},
    {"action": "delete", "keys": {"id": "8"}}
  ]

The batch is applied in one transaction; any invalid change rejects it all.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 2 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var updates []rest.UpdateInfo
			if err := json.NewDecoder(in).Decode(&updates); err != nil {
				return fmt.Errorf("%w: read changes: %v", errUsage, err)
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			ok, err := c.Update(cmd.Context(), service, updates)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("server did not apply the update")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "applied %s %s to %s\n",
				humanize.Comma(int64(len(updates))), plural(len(updates), "change", "changes"), service)
			return nil
		},
	}
}
