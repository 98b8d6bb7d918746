package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"

	"github.com/rogersnm/sheetkeep/internal/util"
)

// lockClient takes the client's advisory write lock, polling until the
// configured timeout. The returned func releases it.
func (s *LocalStore) lockClient(ctx context.Context, clientID string) (func(), error) {
	path := s.paths.LockPath(clientID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(path)
	attempt := 0
	err := util.Poll(ctx, s.lockTimeout, util.IsTarget(ErrLocked), func() error {
		attempt++
		locked, err := fl.TryLock()
		if err != nil {
			return fmt.Errorf("locking %s: %w", path, err)
		}
		if !locked {
			if attempt == 1 {
				s.log.WithField("client", clientID).Debug("waiting for client lock")
			}
			return ErrLocked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			s.log.WithFields(logrus.Fields{"client": clientID, "error": err}).Warn("releasing client lock")
		}
	}, nil
}
