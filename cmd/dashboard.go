package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rogersnm/sheetkeep/internal/render"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"show"},
	Short:   "Show a client's current data",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := resolveClient(cmd)
		if err != nil {
			return err
		}
		t, err := st.Read(clientID)
		if err != nil {
			return explain(clientID, err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, render.DashboardHeader(clientID, len(t.Rows)))
		fmt.Fprintln(out, render.Sheet(t))
		return nil
	},
}

func init() {
	addClientFlag(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}
