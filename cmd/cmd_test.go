package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogersnm/sheetkeep/internal/clientfile"
	"github.com/rogersnm/sheetkeep/internal/config"
	"github.com/rogersnm/sheetkeep/internal/store"
	"github.com/rogersnm/sheetkeep/internal/table"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir = dir
	cfg = &config.Config{}
	interactive = func() bool { return false }
	return dir
}

// resetFlags clears flag values left over from earlier Execute calls; cobra
// keeps them on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--data-dir", dataDir))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSheet(t *testing.T, name string, tbl *table.Table) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, table.WriteFile(path, tbl))
	return path
}

func twoRows() *table.Table {
	tbl := table.New("Task", "Status")
	tbl.Append("Design", "open")
	tbl.Append("Build", "open")
	return tbl
}

func backupsFor(t *testing.T, clientID string) []store.BackupEntry {
	t.Helper()
	entries, err := st.Backups(clientID)
	require.NoError(t, err)
	return entries
}

func TestUpload_FirstUpload(t *testing.T) {
	setupEnv(t)
	src := writeSheet(t, "clients.xlsx", twoRows())

	out, err := run(t, "upload", src, "--client", "client123")
	require.NoError(t, err)
	assert.Contains(t, out, "File uploaded and saved for client: client123")
	assert.Contains(t, out, "sheetkeep dashboard --client client123")
	assert.NotContains(t, out, "Backup created")

	got, err := st.Read("client123")
	require.NoError(t, err)
	assert.True(t, twoRows().Equal(got))
	assert.Empty(t, backupsFor(t, "client123"))
	assert.FileExists(t, filepath.Join(dataDir, "data", "client123.xlsx"))
}

func TestUpload_SecondUploadBacksUp(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	next := twoRows()
	next.Append("Ship", "open")
	out, err := run(t, "upload", writeSheet(t, "b.csv", next), "--client", "client123", "--no-preview")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup created:")
	assert.NotContains(t, out, "Preview:")

	entries := backupsFor(t, "client123")
	require.Len(t, entries, 1)
	assert.DirExists(t, filepath.Join(dataDir, "backups", "client123"))
	old, err := st.ReadBackup("client123", entries[0].Name)
	require.NoError(t, err)
	assert.True(t, twoRows().Equal(old))
}

func TestUpload_RequiresClient(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()))
	assert.Error(t, err)
}

func TestUpload_RejectsTraversal(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "../evil")
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)
}

func TestUpload_InvalidFile(t *testing.T) {
	setupEnv(t)
	bad := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0644))

	_, err := run(t, "upload", bad, "--client", "client123")
	assert.ErrorIs(t, err, store.ErrInvalidFormat)
}

func TestDashboard_ShowsRows(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	out, err := run(t, "dashboard", "--client", "client123")
	require.NoError(t, err)
	assert.Contains(t, out, "client123")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, "Build")
}

func TestDashboard_NotFound(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "dashboard", "--client", "unknown_client")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "please upload first")
}

func TestDashboard_UsesDefaultClient(t *testing.T) {
	dir := setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)
	require.NoError(t, config.Save(dir, &config.Config{DefaultClient: "client123"}))

	out, err := run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Design")
}

func TestSet_UpdatesCellAndBacksUp(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	out, err := run(t, "set", "2", "Status", "done", "--client", "client123")
	require.NoError(t, err)
	assert.Contains(t, out, "Changes saved successfully!")
	assert.Contains(t, out, "Backup created:")

	got, err := st.Read("client123")
	require.NoError(t, err)
	assert.Equal(t, "done", got.Cell(1, 1))
	assert.Len(t, backupsFor(t, "client123"), 1)
}

func TestSet_AppendsRowAndInfersNumbers(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	_, err = run(t, "set", "3", "Task", "42", "--client", "client123")
	require.NoError(t, err)
	_, err = run(t, "set", "1", "Task", "007", "--text", "--client", "client123")
	require.NoError(t, err)

	got, err := st.Read("client123")
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, int64(42), got.Cell(2, 0))
	assert.Equal(t, "007", got.Cell(0, 0))
}

func TestSet_BadArgs(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	_, err = run(t, "set", "0", "Status", "x", "--client", "client123")
	assert.Error(t, err)
	_, err = run(t, "set", "1", "Nope", "x", "--client", "client123")
	assert.Error(t, err)
	assert.Empty(t, backupsFor(t, "client123"))
}

func TestEdit_SavesEditorChanges(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	script := filepath.Join(t.TempDir(), "fake-editor")
	body := "#!/bin/sh\nprintf 'Task,Status\\nDesign,done\\nBuild,open\\nShip,open\\n' > \"$1\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", script)

	out, err := run(t, "edit", "--client", "client123")
	require.NoError(t, err)
	assert.Contains(t, out, "Changes saved successfully!")

	got, err := st.Read("client123")
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "done", got.Cell(0, 1))
	assert.Len(t, backupsFor(t, "client123"), 1)
}

func TestEdit_NoChangesSkipsSave(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "true")

	out, err := run(t, "edit", "--client", "client123")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes.")
	assert.Empty(t, backupsFor(t, "client123"))
}

func TestBackups_ListAndRestore(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)
	_, err = run(t, "set", "1", "Status", "done", "--client", "client123")
	require.NoError(t, err)

	entries := backupsFor(t, "client123")
	require.Len(t, entries, 1)

	out, err := run(t, "backups", "list", "--client", "client123")
	require.NoError(t, err)
	assert.Contains(t, out, entries[0].Name)

	out, err = run(t, "backups", "show", entries[0].Name, "--client", "client123")
	require.NoError(t, err)
	assert.Contains(t, out, "Design")

	_, err = run(t, "backups", "restore", entries[0].Name, "--client", "client123", "--force")
	require.NoError(t, err)

	got, err := st.Read("client123")
	require.NoError(t, err)
	assert.True(t, twoRows().Equal(got))
	assert.Len(t, backupsFor(t, "client123"), 2)
}

func TestBackups_RestoreUnknown(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "backups", "restore", "client123_20240101_000000.xlsx", "--client", "client123", "--force")
	assert.ErrorIs(t, err, store.ErrBackupNotFound)
}

func TestClients_Lists(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "acme")
	require.NoError(t, err)
	_, err = run(t, "upload", writeSheet(t, "b.xlsx", twoRows()), "--client", "globex")
	require.NoError(t, err)

	out, err := run(t, "clients")
	require.NoError(t, err)
	assert.Contains(t, out, "acme")
	assert.Contains(t, out, "globex")
}

func TestExport_CSV(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "out.csv")
	_, err = run(t, "export", dst, "--client", "client123")
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "Task,Status\nDesign,open\nBuild,open\n", string(data))
}

func TestLink_ResolvesClientFromDirectory(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	work := t.TempDir()
	t.Chdir(work)

	_, err = run(t, "link", "client123")
	require.NoError(t, err)
	linked, err := clientfile.Read(work)
	require.NoError(t, err)
	assert.Equal(t, "client123", linked)

	out, err := run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Design")

	out, err = run(t, "unlink")
	require.NoError(t, err)
	assert.Contains(t, out, "Unlinked client.")
}

func TestConfig_SetDefault(t *testing.T) {
	dir := setupEnv(t)
	_, err := run(t, "config", "set-default", "client123")
	require.NoError(t, err)

	c, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "client123", c.DefaultClient)

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "client123")
	assert.Contains(t, out, filepath.Join(dir, "backups"))
}

func TestStartup_CreatesRoots(t *testing.T) {
	dir := setupEnv(t)
	_, err := run(t, "clients")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "data"))
	assert.DirExists(t, filepath.Join(dir, "backups"))
}

func TestStartup_InvalidLogLevel(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "clients", "--log-level", "loud")
	assert.Error(t, err)
}

func TestBackups_RestoreNeedsConfirmation(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)
	_, err = run(t, "upload", writeSheet(t, "b.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)
	entries := backupsFor(t, "client123")
	require.Len(t, entries, 1)

	_, err = run(t, "backups", "restore", entries[0].Name, "--client", "client123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
	assert.Len(t, backupsFor(t, "client123"), 1)
}

func TestLink_UnknownClientNeedsForce(t *testing.T) {
	setupEnv(t)
	work := t.TempDir()
	t.Chdir(work)

	_, err := run(t, "link", "nobody")
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(work, clientfile.FileName))

	_, err = run(t, "link", "nobody", "--force")
	require.NoError(t, err)
	out, err := run(t, "link")
	require.NoError(t, err)
	assert.Contains(t, out, "nobody")
}

func TestEdit_KeepsTypesOfUntouchedCells(t *testing.T) {
	setupEnv(t)
	src := table.New("Code", "Flag", "Status")
	src.Append("007", "TRUE", "open")
	_, err := run(t, "upload", writeSheet(t, "codes.xlsx", src), "--client", "client123")
	require.NoError(t, err)

	script := filepath.Join(t.TempDir(), "fake-editor")
	body := "#!/bin/sh\nprintf 'Code,Flag,Status\\n007,TRUE,done\\n' > \"$1\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", script)

	_, err = run(t, "edit", "--client", "client123")
	require.NoError(t, err)

	got, err := st.Read("client123")
	require.NoError(t, err)
	assert.Equal(t, "007", got.Cell(0, 0))
	assert.Equal(t, "TRUE", got.Cell(0, 1))
	assert.Equal(t, "done", got.Cell(0, 2))
}

func TestSet_AppendedBlankRowIsKept(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "upload", writeSheet(t, "a.xlsx", twoRows()), "--client", "client123")
	require.NoError(t, err)

	out, err := run(t, "set", "3", "Task", "", "--client", "client123")
	require.NoError(t, err)
	assert.Contains(t, out, "Changes saved successfully!")

	got, err := st.Read("client123")
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)
	assert.Nil(t, got.Cell(2, 0))
}
