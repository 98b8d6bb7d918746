package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rogersnm/sheetkeep/internal/render"
	"github.com/rogersnm/sheetkeep/internal/table"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a client spreadsheet (.xlsx, .xls or .csv)",
	Long: `Upload a spreadsheet for a client. It replaces the client's current data;
the previous version, if any, is backed up first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := resolveClient(cmd)
		if err != nil {
			return err
		}

		t, err := table.ReadFile(args[0])
		if err != nil {
			return err
		}

		res, err := st.Write(cmd.Context(), clientID, t)
		if err != nil {
			return explain(clientID, err)
		}

		out := cmd.OutOrStdout()
		if res.BackupPath != "" {
			fmt.Fprintln(out, render.Success("Backup created: "+res.BackupPath))
		}
		fmt.Fprintln(out, render.Success("File uploaded and saved for client: "+clientID))
		if noPreview, _ := cmd.Flags().GetBool("no-preview"); !noPreview {
			fmt.Fprintln(out, "Preview:")
			fmt.Fprintln(out, render.Sheet(t))
		}
		fmt.Fprintln(out, render.Info("Shareable dashboard link: sheetkeep dashboard --client "+clientID))
		return nil
	},
}

func init() {
	addClientFlag(uploadCmd)
	uploadCmd.Flags().Bool("no-preview", false, "do not print the uploaded table")
	rootCmd.AddCommand(uploadCmd)
}
