package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	mtp "github.com/modeltoolsprotocol/go-sdk"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rogersnm/sheetkeep/internal/clientfile"
	"github.com/rogersnm/sheetkeep/internal/config"
	"github.com/rogersnm/sheetkeep/internal/store"
)

var (
	version  = "dev"
	dataDir  string
	logLevel string
	st       store.Store
	cfg      *config.Config
	log      = logrus.New()

	// interactive reports whether prompts may be shown.
	interactive = func() bool { return isTerminal(os.Stdin) }
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".sheetkeep")
	}
	return filepath.Join(home, ".sheetkeep")
}

var rootCmd = &cobra.Command{
	Use:     "sheetkeep",
	Short:   "Per-client spreadsheet uploads with automatic backups",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		var err error
		cfg, err = config.Load(dataDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := setupLogging(cmd); err != nil {
			return err
		}

		timeout, err := cfg.LockTimeoutOr(store.DefaultLockTimeout)
		if err != nil {
			return err
		}
		dataRoot, backupRoot := cfg.Roots(dataDir)
		st = store.NewLocal(store.Options{
			DataRoot:    dataRoot,
			BackupRoot:  backupRoot,
			LockTimeout: timeout,
			Logger:      log,
		})
		if err := st.Init(); err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		log.WithFields(logrus.Fields{"data": dataRoot, "backups": backupRoot}).Debug("storage ready")
		return nil
	},
	SilenceUsage: true,
}

func setupLogging(cmd *cobra.Command) error {
	name := cfg.Level()
	if logLevel != "" {
		name = logLevel
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: level < logrus.DebugLevel})
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory holding config.yaml, data and backups")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	mtpOpts := &mtp.DescribeOptions{
		Commands: map[string]*mtp.CommandAnnotation{
			"upload": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Confirmation, backup path if one was taken, and a preview table",
				},
				Examples: []mtp.Example{
					{Description: "Upload a workbook for a client", Command: "sheetkeep upload report.xlsx --client client123"},
					{Description: "Upload a legacy workbook", Command: "sheetkeep upload old.xls --client client123"},
				},
			},
			"dashboard": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Header and table of the client's current data",
				},
				Examples: []mtp.Example{
					{Description: "Show a client's dashboard", Command: "sheetkeep dashboard --client client123"},
				},
			},
			"edit": {
				Examples: []mtp.Example{
					{Description: "Edit a client's sheet as CSV in $EDITOR", Command: "sheetkeep edit --client client123"},
				},
			},
			"set": {
				Examples: []mtp.Example{
					{Description: "Change one cell (row numbers start at 1)", Command: "sheetkeep set --client client123 2 Status done"},
				},
			},
			"export": {
				Examples: []mtp.Example{
					{Description: "Export current data as CSV", Command: "sheetkeep export out.csv --client client123"},
				},
			},
			"backups list": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Table of backups, oldest first",
				},
				Examples: []mtp.Example{
					{Description: "List a client's backups", Command: "sheetkeep backups list --client client123"},
				},
			},
			"backups restore": {
				Examples: []mtp.Example{
					{Description: "Restore a backup (interactive confirm)", Command: "sheetkeep backups restore client123_20240315_093000.xlsx --client client123"},
					{Description: "Restore a backup (skip confirm)", Command: "sheetkeep backups restore client123_20240315_093000.xlsx --client client123 --force"},
				},
			},
			"link": {
				Examples: []mtp.Example{
					{Description: "Link the current directory to a client", Command: "sheetkeep link client123"},
				},
			},
		},
	}

	mtp.WithDescribe(rootCmd, mtpOpts)
}

func Execute() error {
	return rootCmd.Execute()
}

// addClientFlag registers the --client flag, the CLI counterpart of the
// dashboard's ?client= query parameter.
func addClientFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("client", "c", "", "client ID")
}

// resolveClient returns the client ID from the flag, a linked directory, the
// configured default, or an interactive prompt.
func resolveClient(cmd *cobra.Command) (string, error) {
	id, _ := cmd.Flags().GetString("client")
	if id == "" {
		if cwd, err := os.Getwd(); err == nil {
			if linked, _, _ := clientfile.Find(cwd); linked != "" {
				id = linked
			}
		}
	}
	if id == "" && cfg != nil {
		id = cfg.DefaultClient
	}
	if id == "" && interactive() {
		if err := huh.NewInput().
			Title("Client ID").
			Placeholder("client123").
			Value(&id).
			Run(); err != nil {
			return "", fmt.Errorf("cancelled")
		}
	}
	if id == "" {
		return "", fmt.Errorf("--client is required (or link a directory with: sheetkeep link <id>, or set a default with: sheetkeep config set-default <id>)")
	}
	if err := store.ValidateClientID(id); err != nil {
		return "", err
	}
	return id, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// explain rewrites store errors into the messages shown to the user.
func explain(clientID string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("no file found for client %s; please upload first with: sheetkeep upload <file> --client %s: %w", clientID, clientID, store.ErrNotFound)
	case errors.Is(err, store.ErrBackupFailed):
		return fmt.Errorf("changes not saved, the previous version could not be backed up: %w", err)
	case errors.Is(err, store.ErrWriteFailed):
		return fmt.Errorf("error saving changes (the previous version is kept in backups): %w", err)
	case errors.Is(err, store.ErrLocked):
		return fmt.Errorf("client %s is being saved by another session, try again: %w", clientID, err)
	}
	return err
}
