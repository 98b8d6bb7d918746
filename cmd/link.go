package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rogersnm/sheetkeep/internal/clientfile"
	"github.com/rogersnm/sheetkeep/internal/config"
	"github.com/rogersnm/sheetkeep/internal/render"
	"github.com/rogersnm/sheetkeep/internal/store"
)

var linkCmd = &cobra.Command{
	Use:   "link [client-id]",
	Short: "Link the current directory to a client, or show the current link",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			id, dir, err := clientfile.Find(cwd)
			if err != nil {
				return err
			}
			if id == "" {
				fmt.Fprintln(out, "No client linked. Run: sheetkeep link <client-id>")
				return nil
			}
			fmt.Fprintf(out, "%s (from %s/%s)\n", id, dir, clientfile.FileName)
			return nil
		}

		clientID := args[0]
		if err := store.ValidateClientID(clientID); err != nil {
			return err
		}
		exists, err := st.Exists(clientID)
		if err != nil {
			return err
		}
		if !exists {
			force, _ := cmd.Flags().GetBool("force")
			switch {
			case force:
				fmt.Fprintln(out, render.Warn("No data uploaded for "+clientID+" yet."))
			case !interactive():
				return fmt.Errorf("no data uploaded for %s yet; pass --force to link anyway", clientID)
			default:
				var confirm bool
				msg := fmt.Sprintf("No data uploaded for %s yet. Link anyway?", clientID)
				if err := huh.NewConfirm().Title(msg).Value(&confirm).Run(); err != nil || !confirm {
					return fmt.Errorf("link cancelled")
				}
			}
		}
		if err := clientfile.Write(cwd, clientID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Linked %s to client %s\n", clientfile.FileName, clientID)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Remove the current directory's client link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		removed, err := clientfile.Remove(cwd)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintln(cmd.OutOrStdout(), "No client linked.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Unlinked client.")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, err := cfg.LockTimeoutOr(store.DefaultLockTimeout)
		if err != nil {
			return err
		}
		paths := st.Paths()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, render.Field("Config", filepath.Join(dataDir, config.FileName)))
		fmt.Fprintln(out, render.Field("Data root", paths.DataRoot))
		fmt.Fprintln(out, render.Field("Backup root", paths.BackupRoot))
		fmt.Fprintln(out, render.Field("Default client", orNone(cfg.DefaultClient)))
		fmt.Fprintln(out, render.Field("Log level", cfg.Level()))
		fmt.Fprintln(out, render.Field("Lock timeout", timeout.String()))
		return nil
	},
}

var configSetDefaultCmd = &cobra.Command{
	Use:   "set-default <client-id>",
	Short: "Set the client used when --client is omitted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.ValidateClientID(args[0]); err != nil {
			return err
		}
		cfg.DefaultClient = args[0]
		if err := config.Save(dataDir, cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Default client set to %s\n", args[0])
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func init() {
	linkCmd.Flags().BoolP("force", "f", false, "link even if the client has no data yet")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetDefaultCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(configCmd)
}
