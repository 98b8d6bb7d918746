package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rogersnm/sheetkeep/internal/table"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a client's current data to .xlsx or .csv",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := resolveClient(cmd)
		if err != nil {
			return err
		}
		t, err := st.Read(clientID)
		if err != nil {
			return explain(clientID, err)
		}
		if err := table.WriteFile(args[0], t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d row(s) for %s to %s\n", len(t.Rows), clientID, args[0])
		return nil
	},
}

func init() {
	addClientFlag(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
