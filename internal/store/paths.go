package store

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	dataExt     = ".xlsx"
	locksDir    = ".locks"
	lockFileExt = ".lock"
)

// Resolver maps client identifiers to their data file and backup directory.
// Path methods are pure; callers validate identifiers first.
type Resolver struct {
	DataRoot   string
	BackupRoot string
}

func NewResolver(dataRoot, backupRoot string) *Resolver {
	return &Resolver{DataRoot: dataRoot, BackupRoot: backupRoot}
}

// DataPath returns <data-root>/<id>.xlsx.
func (r *Resolver) DataPath(clientID string) string {
	return filepath.Join(r.DataRoot, clientID+dataExt)
}

// BackupDir returns <backup-root>/<id>.
func (r *Resolver) BackupDir(clientID string) string {
	return filepath.Join(r.BackupRoot, clientID)
}

func (r *Resolver) LockPath(clientID string) string {
	return filepath.Join(r.DataRoot, locksDir, clientID+lockFileExt)
}

// ValidateClientID rejects identifiers that are empty, reserved, or would
// escape the data and backup roots when used as a path component.
func ValidateClientID(clientID string) error {
	switch {
	case strings.TrimSpace(clientID) == "":
		return fmt.Errorf("%w: client ID is required", ErrInvalidIdentifier)
	case clientID == "." || clientID == "..":
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, clientID)
	case strings.ContainsAny(clientID, "/\\\x00"):
		return fmt.Errorf("%w: %q must not contain path separators", ErrInvalidIdentifier, clientID)
	case strings.HasPrefix(clientID, "."):
		return fmt.Errorf("%w: %q must not start with a dot", ErrInvalidIdentifier, clientID)
	}
	return nil
}
