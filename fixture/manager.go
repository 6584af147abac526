package fixture

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Manager applies, verifies and removes fixtures for one scenario run.
// It only ever removes what it created, in reverse creation order.
type Manager struct {
	fs afero.Fs

	mu      sync.Mutex
	created []string
}

// NewManager returns a manager over fs. Passing nil selects the real
// filesystem; tests pass afero.NewMemMapFs().
func NewManager(fs afero.Fs) *Manager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Manager{fs: fs}
}

// Apply materializes every fixture marked Create, parents included. The
// first failure aborts with a *SetupError; anything already created
// stays recorded so Cleanup can still remove it.
func (m *Manager) Apply(ctx context.Context, fixtures []Fixture) error {
	log := zerolog.Ctx(ctx)

	for _, f := range fixtures {
		if !f.Create {
			continue
		}
		if err := m.applyOne(f); err != nil {
			return &SetupError{Path: f.Path, Err: err}
		}
		log.Debug().Str("path", f.Path).Bool("dir", f.Dir).Msg("fixture created")
	}
	return nil
}

func (m *Manager) applyOne(f Fixture) error {
	if f.Dir {
		// A pre-existing directory is not ours to remove later.
		if exists, err := afero.DirExists(m.fs, f.Path); err != nil {
			return err
		} else if exists {
			return nil
		}
		if err := m.fs.MkdirAll(f.Path, 0o755); err != nil {
			return err
		}
		m.record(f.Path)
		return nil
	}

	if exists, err := afero.Exists(m.fs, f.Path); err != nil {
		return err
	} else if exists {
		// Fixture paths are exclusively owned by one run; clobbering a
		// file somebody else put there would also mark it for removal.
		return fmt.Errorf("path already exists")
	}

	dir := filepath.Dir(f.Path)
	if exists, err := afero.DirExists(m.fs, dir); err != nil {
		return err
	} else if !exists {
		if err := m.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		m.record(dir)
	}

	content := f.Content
	if f.Template != "" {
		data, err := afero.ReadFile(m.fs, f.Template)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		content = data
	}

	if err := afero.WriteFile(m.fs, f.Path, content, 0o644); err != nil {
		return err
	}
	m.record(f.Path)
	return nil
}

func (m *Manager) record(path string) {
	m.mu.Lock()
	m.created = append(m.created, path)
	m.mu.Unlock()
}

// Verify checks every fixture carrying an expectation against the
// actual filesystem and reports all mismatches together in one
// *AssertionError. It runs after session teardown, pass or fail.
func (m *Manager) Verify(fixtures []Fixture) error {
	var mismatches []Mismatch
	for _, f := range fixtures {
		if f.Expect == ExpectNone {
			continue
		}
		exists, err := afero.Exists(m.fs, f.Path)
		if err != nil {
			exists = false
		}
		got := ExpectAbsent
		if exists {
			got = ExpectExists
		}
		if got != f.Expect {
			mismatches = append(mismatches, Mismatch{Path: f.Path, Want: f.Expect, Got: got})
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{Mismatches: mismatches}
	}
	return nil
}

// Cleanup removes everything Apply created, newest first, plus any
// fixture marked Remove (artifacts the tested program produced). Best
// effort: already-absent paths count as removed and nothing is ever
// reported as an error. Calling it again leaves the same end state.
func (m *Manager) Cleanup(ctx context.Context, fixtures []Fixture) {
	log := zerolog.Ctx(ctx)

	m.mu.Lock()
	created := m.created
	m.created = nil
	m.mu.Unlock()

	for _, f := range fixtures {
		if f.Remove {
			m.removeOne(log, f.Path)
		}
	}
	for i := len(created) - 1; i >= 0; i-- {
		m.removeOne(log, created[i])
	}
}

func (m *Manager) removeOne(log *zerolog.Logger, path string) {
	if err := m.fs.RemoveAll(path); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("fixture cleanup failed")
		return
	}
	log.Debug().Str("path", path).Msg("fixture removed")
}
