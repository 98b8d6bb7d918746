package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rogersnm/sheetkeep/internal/render"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List and restore client backups",
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a client's backups, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := resolveClient(cmd)
		if err != nil {
			return err
		}
		entries, err := st.Backups(clientID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Backups(entries))
		return nil
	},
}

var backupsShowCmd = &cobra.Command{
	Use:   "show <backup>",
	Short: "Show the content of one backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := resolveClient(cmd)
		if err != nil {
			return err
		}
		t, err := st.ReadBackup(clientID, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, render.Header(args[0]))
		fmt.Fprintln(out, render.Sheet(t))
		return nil
	},
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <backup>",
	Short: "Make a backup the current data (the current version is backed up first)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := resolveClient(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			if !interactive() {
				return fmt.Errorf("refusing to restore without confirmation; pass --force")
			}
			var confirm bool
			msg := fmt.Sprintf("Replace the current data for %s with %s?", clientID, args[0])
			if err := huh.NewConfirm().Title(msg).Value(&confirm).Run(); err != nil || !confirm {
				return fmt.Errorf("restore cancelled")
			}
		}
		res, err := st.Restore(cmd.Context(), clientID, args[0])
		if err != nil {
			return explain(clientID, err)
		}
		out := cmd.OutOrStdout()
		if res.BackupPath != "" {
			fmt.Fprintln(out, render.Success("Backup created: "+res.BackupPath))
		}
		fmt.Fprintln(out, render.Success(fmt.Sprintf("Restored %s for client: %s", args[0], clientID)))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{backupsListCmd, backupsShowCmd, backupsRestoreCmd} {
		addClientFlag(c)
		backupsCmd.AddCommand(c)
	}
	backupsRestoreCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(backupsCmd)
}
