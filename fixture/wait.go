package fixture

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

const waitPollInterval = 25 * time.Millisecond

// WaitPath blocks until path exists or timeout elapses, for
// postconditions that the tested program produces asynchronously (log
// files written after startup). A miss returns false, not an error,
// mirroring the output matcher's contract.
//
// On the real filesystem the wait is event-driven via fsnotify on the
// parent directory; other afero backends fall back to polling.
func (m *Manager) WaitPath(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	if exists, err := afero.Exists(m.fs, path); err != nil {
		return false, err
	} else if exists {
		return true, nil
	}

	if _, ok := m.fs.(*afero.OsFs); ok {
		return m.waitNotify(ctx, path, timeout)
	}
	return m.waitPoll(ctx, path, timeout)
}

func (m *Manager) waitNotify(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return false, err
	}

	// The file may have appeared between the existence check and the
	// watch registration.
	if exists, err := afero.Exists(m.fs, path); err != nil {
		return false, err
	} else if exists {
		return true, nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return false, nil
			}
			if ev.Name == path && ev.Op.Has(fsnotify.Create|fsnotify.Write) {
				return true, nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return false, nil
			}
			return false, err
		}
	}
}

func (m *Manager) waitPoll(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-ticker.C:
			if exists, err := afero.Exists(m.fs, path); err != nil {
				return false, err
			} else if exists {
				return true, nil
			}
		}
	}
}
