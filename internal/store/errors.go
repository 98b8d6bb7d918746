package store

import (
	"errors"

	"github.com/rogersnm/sheetkeep/internal/table"
)

var (
	// ErrNotFound means no data file exists yet for the client.
	ErrNotFound = errors.New("no file found for this client")
	// ErrInvalidFormat means stored or uploaded content is not a readable table.
	ErrInvalidFormat = table.ErrInvalidFormat
	// ErrBackupFailed means the pre-write copy could not be made; nothing was written.
	ErrBackupFailed = errors.New("backup failed")
	// ErrWriteFailed means persisting failed after a successful backup.
	ErrWriteFailed = errors.New("write failed")
	// ErrInvalidIdentifier means the client identifier is empty or unsafe as a path component.
	ErrInvalidIdentifier = errors.New("invalid client identifier")
	// ErrLocked means another session held the client's lock past the timeout.
	ErrLocked = errors.New("client is locked by another session")
	// ErrBackupNotFound means a named backup does not exist for the client.
	ErrBackupNotFound = errors.New("backup not found")
)
