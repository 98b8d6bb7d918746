package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rogersnm/sheetkeep/internal/editor"
	"github.com/rogersnm/sheetkeep/internal/render"
	"github.com/rogersnm/sheetkeep/internal/store"
	"github.com/rogersnm/sheetkeep/internal/table"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a client's sheet as CSV in $EDITOR and save it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := resolveClient(cmd)
		if err != nil {
			return err
		}
		t, err := st.Read(clientID)
		if err != nil {
			return explain(clientID, err)
		}

		var before bytes.Buffer
		if err := table.WriteCSV(&before, t); err != nil {
			return err
		}
		tmp, err := os.CreateTemp("", "sheetkeep-"+clientID+"-*.csv")
		if err != nil {
			return fmt.Errorf("creating edit file: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(before.Bytes()); err != nil {
			tmp.Close()
			return fmt.Errorf("writing edit file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("writing edit file: %w", err)
		}

		if err := editor.Open(tmp.Name()); err != nil {
			return err
		}

		after, err := os.ReadFile(tmp.Name())
		if err != nil {
			return fmt.Errorf("reading edit file: %w", err)
		}
		out := cmd.OutOrStdout()
		if bytes.Equal(before.Bytes(), after) {
			fmt.Fprintln(out, "No changes.")
			return nil
		}
		edited, err := table.ReadCSVEdit(bytes.NewReader(after), t)
		if err != nil {
			return err
		}
		return save(cmd, clientID, edited)
	},
}

var setCmd = &cobra.Command{
	Use:   "set <row> <column> <value>",
	Short: "Change one cell and save (rows start at 1; the next row number appends)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := resolveClient(cmd)
		if err != nil {
			return err
		}
		row, err := strconv.Atoi(args[0])
		if err != nil || row < 1 {
			return fmt.Errorf("invalid row %q: must be a number starting at 1", args[0])
		}
		t, err := st.Read(clientID)
		if err != nil {
			return explain(clientID, err)
		}

		var value any = args[2]
		if asText, _ := cmd.Flags().GetBool("text"); !asText {
			value = table.ParseValue(args[2])
		}
		if err := t.Set(row-1, args[1], value); err != nil {
			return err
		}
		return save(cmd, clientID, t)
	},
}

// save writes edited content and reports the outcome.
func save(cmd *cobra.Command, clientID string, t *table.Table) error {
	res, err := st.Write(cmd.Context(), clientID, t)
	if err != nil {
		return explain(clientID, err)
	}
	reportSaved(cmd, res)
	return nil
}

func reportSaved(cmd *cobra.Command, res *store.WriteResult) {
	out := cmd.OutOrStdout()
	if res.BackupPath != "" {
		fmt.Fprintln(out, render.Success("Backup created: "+res.BackupPath))
	}
	fmt.Fprintln(out, render.Success("Changes saved successfully!"))
}

func init() {
	addClientFlag(editCmd)
	addClientFlag(setCmd)
	setCmd.Flags().Bool("text", false, "store the value as text without number inference")
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(setCmd)
}
