package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TimestampLayout is the second-resolution local time embedded in backup names.
const TimestampLayout = "20060102_150405"

// maxSameSecond bounds the collision counter for backups taken in one second.
const maxSameSecond = 1000

// BackupEntry describes one immutable backup of a client's data file.
type BackupEntry struct {
	Name    string
	Path    string
	Taken   time.Time
	Seq     int
	Size    int64
	ModTime time.Time
}

// BackupManager copies a client's current data file aside before it is
// overwritten.
type BackupManager struct {
	paths *Resolver
	now   func() time.Time
	log   logrus.FieldLogger
}

func NewBackupManager(paths *Resolver, now func() time.Time, log logrus.FieldLogger) *BackupManager {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BackupManager{paths: paths, now: now, log: log}
}

// Backup copies the current data file to
// <backup-dir>/<id>_<YYYYMMDD_HHMMSS>.xlsx and returns the new path. With no
// data file it does nothing and returns "". A second backup within the same
// second gets a _1, _2, ... suffix instead of replacing the first.
func (m *BackupManager) Backup(clientID string) (string, error) {
	if err := ValidateClientID(clientID); err != nil {
		return "", err
	}
	src := m.paths.DataPath(clientID)
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: opening %s: %w", ErrBackupFailed, src, err)
	}
	defer in.Close()

	dir := m.paths.BackupDir(clientID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", ErrBackupFailed, dir, err)
	}

	out, dst, err := createBackupFile(dir, clientID, m.now())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("%w: copying to %s: %w", ErrBackupFailed, dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("%w: syncing %s: %w", ErrBackupFailed, dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: closing %s: %w", ErrBackupFailed, dst, err)
	}

	if err := syncDir(dir); err != nil {
		m.log.WithFields(logrus.Fields{"path": dir, "error": err}).Warn("syncing backup directory")
	}

	m.log.WithFields(logrus.Fields{"client": clientID, "backup": dst}).Info("backup created")
	return dst, nil
}

func createBackupFile(dir, clientID string, at time.Time) (*os.File, string, error) {
	base := clientID + "_" + at.Format(TimestampLayout)
	for seq := 0; seq < maxSameSecond; seq++ {
		name := base
		if seq > 0 {
			name += "_" + strconv.Itoa(seq)
		}
		path := filepath.Join(dir, name+dataExt)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("more than %d backups of %s in one second", maxSameSecond, clientID)
}

// List returns the client's backups, oldest first. Files that do not follow
// the backup naming scheme are ignored.
func (m *BackupManager) List(clientID string) ([]BackupEntry, error) {
	if err := ValidateClientID(clientID); err != nil {
		return nil, err
	}
	dir := m.paths.BackupDir(clientID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var out []BackupEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		taken, seq, ok := parseBackupName(clientID, e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		out = append(out, BackupEntry{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Taken:   taken,
			Seq:     seq,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Taken.Equal(out[j].Taken) {
			return out[i].Taken.Before(out[j].Taken)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

// Path returns the location of a named backup, or ErrBackupNotFound.
func (m *BackupManager) Path(clientID, name string) (string, error) {
	if err := ValidateClientID(clientID); err != nil {
		return "", err
	}
	if _, _, ok := parseBackupName(clientID, name); !ok {
		return "", fmt.Errorf("%w: %q", ErrBackupNotFound, name)
	}
	path := filepath.Join(m.paths.BackupDir(clientID), name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrBackupNotFound, name)
		}
		return "", err
	}
	return path, nil
}

// parseBackupName splits <id>_<timestamp>[_<seq>].xlsx.
func parseBackupName(clientID, name string) (time.Time, int, bool) {
	rest, ok := strings.CutPrefix(name, clientID+"_")
	if !ok {
		return time.Time{}, 0, false
	}
	rest, ok = strings.CutSuffix(rest, dataExt)
	if !ok || len(rest) < len(TimestampLayout) {
		return time.Time{}, 0, false
	}
	taken, err := time.ParseInLocation(TimestampLayout, rest[:len(TimestampLayout)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	suffix := rest[len(TimestampLayout):]
	if suffix == "" {
		return taken, 0, true
	}
	seqStr, ok := strings.CutPrefix(suffix, "_")
	if !ok {
		return time.Time{}, 0, false
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil || seq <= 0 {
		return time.Time{}, 0, false
	}
	return taken, seq, true
}
