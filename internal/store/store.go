package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rogersnm/sheetkeep/internal/table"
)

// DefaultLockTimeout bounds how long Write waits for another session.
const DefaultLockTimeout = 5 * time.Second

// Options configures a LocalStore.
type Options struct {
	DataRoot    string
	BackupRoot  string
	LockTimeout time.Duration
	Logger      logrus.FieldLogger
	// Now stamps backup names; defaults to time.Now.
	Now func() time.Time
}

// WriteResult reports where a write landed. BackupPath is empty when there
// was no prior file to preserve.
type WriteResult struct {
	DataPath   string
	BackupPath string
}

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	paths       *Resolver
	backups     *BackupManager
	lockTimeout time.Duration
	log         logrus.FieldLogger
}

// compile-time check
var _ Store = (*LocalStore)(nil)

func NewLocal(opts Options) *LocalStore {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	timeout := opts.LockTimeout
	if timeout < 0 {
		timeout = 0
	}
	paths := NewResolver(opts.DataRoot, opts.BackupRoot)
	return &LocalStore{
		paths:       paths,
		backups:     NewBackupManager(paths, opts.Now, log),
		lockTimeout: timeout,
		log:         log,
	}
}

func (s *LocalStore) Paths() *Resolver {
	return s.paths
}

// Init creates the data and backup roots if absent.
func (s *LocalStore) Init() error {
	for _, d := range []string{s.paths.DataRoot, s.paths.BackupRoot} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	return nil
}

func (s *LocalStore) Exists(clientID string) (bool, error) {
	if err := ValidateClientID(clientID); err != nil {
		return false, err
	}
	_, err := os.Stat(s.paths.DataPath(clientID))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Read parses the client's current data file. It returns ErrNotFound when
// nothing has been uploaded yet and ErrInvalidFormat when the file cannot be
// parsed.
func (s *LocalStore) Read(clientID string) (*table.Table, error) {
	if err := ValidateClientID(clientID); err != nil {
		return nil, err
	}
	return readXLSXFile(s.paths.DataPath(clientID), func() error {
		return fmt.Errorf("%w: %s", ErrNotFound, clientID)
	})
}

func readXLSXFile(path string, notFound func() error) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	t, err := table.ReadXLSX(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// Write replaces the client's data file with t. The current file, if any, is
// backed up first; if that fails nothing is written. The replacement goes to
// a temp file that is renamed into place, so a failed write leaves the
// previous version intact.
func (s *LocalStore) Write(ctx context.Context, clientID string, t *table.Table) (*WriteResult, error) {
	if err := ValidateClientID(clientID); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: no content", ErrWriteFailed)
	}

	unlock, err := s.lockClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	backupPath, err := s.backups.Backup(clientID)
	if err != nil {
		return nil, err
	}

	dst := s.paths.DataPath(clientID)
	if err := s.persist(dst, t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.log.WithFields(logrus.Fields{
		"client": clientID,
		"path":   dst,
		"rows":   len(t.Rows),
		"backup": backupPath,
	}).Info("client data saved")
	return &WriteResult{DataPath: dst, BackupPath: backupPath}, nil
}

func (s *LocalStore) persist(dst string, t *table.Table) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp := filepath.Join(dir, "."+uuid.NewString()+dataExt+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(tmp)
	}
	if err := table.WriteXLSX(f, t); err != nil {
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	if err := syncDir(dir); err != nil {
		s.log.WithFields(logrus.Fields{"path": dir, "error": err}).Warn("syncing data directory")
	}
	return nil
}

// syncDir flushes a directory entry so a completed rename or create survives
// a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return fmt.Errorf("syncing %s: %w", dir, err)
	}
	return d.Close()
}

// Clients lists identifiers that have a data file, sorted.
func (s *LocalStore) Clients() ([]string, error) {
	entries, err := os.ReadDir(s.paths.DataRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, dataExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, dataExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *LocalStore) Backups(clientID string) ([]BackupEntry, error) {
	return s.backups.List(clientID)
}

// ReadBackup parses one named backup of the client.
func (s *LocalStore) ReadBackup(clientID, name string) (*table.Table, error) {
	path, err := s.backups.Path(clientID, name)
	if err != nil {
		return nil, err
	}
	return readXLSXFile(path, func() error {
		return fmt.Errorf("%w: %q", ErrBackupNotFound, name)
	})
}

// Restore writes a backup's content back as the current data. The version
// being replaced is itself backed up first, like any other write.
func (s *LocalStore) Restore(ctx context.Context, clientID, name string) (*WriteResult, error) {
	t, err := s.ReadBackup(clientID, name)
	if err != nil {
		return nil, err
	}
	return s.Write(ctx, clientID, t)
}
