package store

import (
	"context"

	"github.com/rogersnm/sheetkeep/internal/table"
)

// Store defines the client spreadsheet operations used by the commands.
// LocalStore implements it on the filesystem.
type Store interface {
	// Setup
	Init() error
	Paths() *Resolver

	// Data files
	Exists(clientID string) (bool, error)
	Read(clientID string) (*table.Table, error)
	Write(ctx context.Context, clientID string, t *table.Table) (*WriteResult, error)
	Clients() ([]string, error)

	// Backups
	Backups(clientID string) ([]BackupEntry, error)
	ReadBackup(clientID, name string) (*table.Table, error)
	Restore(ctx context.Context, clientID, name string) (*WriteResult, error)
}
