package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rogersnm/sheetkeep/internal/render"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List clients that have uploaded data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := st.Clients()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Clients(ids))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd)
}
