package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/spf13/cobra"
)

type capabilityRow struct {
	Name      string   `json:"name"`
	Wire      string   `json:"wire"`
	Direction string   `json:"direction"`
	Args      []string `json:"args,omitempty"`
	Result    string   `json:"result,omitempty"`
	Optional  bool     `json:"optional,omitempty"`
}

func newCapabilitiesCommand(a *app) *cobra.Command {
	var (
		role   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "List the operations a role's scripts can reach",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("role") {
				role = a.cfg.Role
			}
			r, err := bridge.ParseRole(role)
			if err != nil {
				return err
			}
			caps, err := bridge.DefaultRegistry().Capabilities(r)
			if err != nil {
				return err
			}
			rows := capabilityRows(caps.Operations)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"role":       r,
					"jsonHelper": caps.JSONHelper,
					"operations": rows,
				})
			}
			return writeCapabilityTable(cmd, r, caps.JSONHelper, rows)
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "", "role: Params, JavaScript, UI or Urls")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func capabilityRows(ops []bridge.Operation) []capabilityRow {
	rows := make([]capabilityRow, 0, len(ops))
	for _, op := range ops {
		row := capabilityRow{
			Name:      op.Name,
			Wire:      op.WireName(),
			Direction: op.Direction.String(),
			Optional:  op.Optional,
		}
		if op.Marker {
			row.Direction = "marker"
		}
		for _, arg := range op.Args {
			name := arg.Name
			if arg.Optional {
				name += "?"
			}
			row.Args = append(row.Args, name)
		}
		if op.ReturnsValue() {
			row.Result = op.Result.String()
		}
		rows = append(rows, row)
	}
	return rows
}

func writeCapabilityTable(cmd *cobra.Command, role bridge.Role, jsonHelper bool, rows []capabilityRow) error {
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "role %s, JSON helper %t\n\n", role, jsonHelper); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tKIND\tARGS\tRESULT\tOPTIONAL")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
			row.Name, row.Direction, strings.Join(row.Args, ", "), row.Result, row.Optional)
	}
	return tw.Flush()
}
