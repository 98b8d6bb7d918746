// Package clientfile links a working directory to a client identifier so
// commands run there need no --client flag.
package clientfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const FileName = ".sheetkeep-client"

// Find walks up from startDir looking for a link file.
// Returns the client ID and the directory containing the file.
// Returns ("", "", nil) if not found.
func Find(startDir string) (clientID, dir string, err error) {
	dir = startDir
	for {
		id, err := Read(dir)
		if err != nil {
			return "", "", err
		}
		if id != "" {
			return id, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", nil
		}
		dir = parent
	}
}

func Write(dir, clientID string) error {
	return os.WriteFile(filepath.Join(dir, FileName), []byte(clientID+"\n"), 0644)
}

// Read returns ("", nil) if dir has no link file.
func Read(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Remove deletes the link file in dir. It reports false when there was none.
func Remove(dir string) (bool, error) {
	err := os.Remove(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
