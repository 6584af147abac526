// Package tmux provides a session backend on top of the tmux binary.
// Every session is a detached tmux session; the screen is read with
// capture-pane and input is delivered with send-keys.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.alt-gnome.ru/termwright"
)

var DefaultTmuxCli string = "tmux"

// Execer runs one external command and returns its combined output.
// The default implementation shells out; tests inject a fake.
type Execer interface {
	Run(name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

type Option func(*tmuxProvider)

func WithExecer(e Execer) Option {
	return func(p *tmuxProvider) {
		p.exec = e
	}
}

func WithCli(cli string) Option {
	return func(p *tmuxProvider) {
		p.cli = cli
	}
}

// WithShell sets the command started inside new sessions instead of the
// user's default shell.
func WithShell(cmd string) Option {
	return func(p *tmuxProvider) {
		p.shell = cmd
	}
}

func WithSize(width, height int) Option {
	return func(p *tmuxProvider) {
		p.width, p.height = width, height
	}
}

type tmuxProvider struct {
	exec   Execer
	cli    string
	shell  string
	width  int
	height int
}

func Provider(opts ...Option) *tmuxProvider {
	p := &tmuxProvider{
		exec:   execRunner{},
		cli:    DefaultTmuxCli,
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *tmuxProvider) Open(ctx context.Context, name string) (termwright.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &termwright.CreateError{Session: name, Err: err}
	}

	if _, err := p.exec.Run(p.cli, "has-session", "-t", name); err == nil {
		return nil, &termwright.CreateError{Session: name, Err: termwright.ErrSessionExists}
	}

	args := []string{
		"new-session", "-d",
		"-s", name,
		"-x", fmt.Sprint(p.width),
		"-y", fmt.Sprint(p.height),
	}
	if p.shell != "" {
		args = append(args, p.shell)
	}
	if out, err := p.exec.Run(p.cli, args...); err != nil {
		return nil, &termwright.CreateError{
			Session: name,
			Err:     fmt.Errorf("tmux new-session: %w: %s", err, strings.TrimSpace(out)),
		}
	}

	return &session{p: p, name: name}, nil
}

type session struct {
	p    *tmuxProvider
	name string

	mu     sync.Mutex
	closed bool
}

func (s *session) Name() string { return s.name }

func (s *session) Send(ev termwright.KeyEvent) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return &termwright.IOError{Session: s.name, Err: termwright.ErrSessionClosed}
	}

	var args []string
	if ev.Key != termwright.KeyNone {
		// tmux understands the symbolic names directly (Enter, Escape, C-c).
		args = []string{"send-keys", "-t", s.name, string(ev.Key)}
	} else {
		args = []string{"send-keys", "-t", s.name, "-l", "--", ev.Text}
	}
	if out, err := s.p.exec.Run(s.p.cli, args...); err != nil {
		return &termwright.IOError{
			Session: s.name,
			Err:     fmt.Errorf("tmux send-keys: %w: %s", err, strings.TrimSpace(out)),
		}
	}
	return nil
}

func (s *session) Capture() ([]string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, &termwright.IOError{Session: s.name, Err: termwright.ErrSessionClosed}
	}

	out, err := s.p.exec.Run(s.p.cli, "capture-pane", "-p", "-t", s.name)
	if err != nil {
		return nil, &termwright.IOError{
			Session: s.name,
			Err:     fmt.Errorf("tmux capture-pane: %w: %s", err, strings.TrimSpace(out)),
		}
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	return lines, nil
}

// Close kills the tmux session. The process inside is force-terminated;
// callers never need it to have exited first.
func (s *session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	out, err := s.p.exec.Run(s.p.cli, "kill-session", "-t", s.name)
	if err != nil {
		// The session may have died on its own; that still counts as closed.
		if strings.Contains(out, "can't find session") {
			return nil
		}
		return fmt.Errorf("tmux kill-session: %w: %s", err, strings.TrimSpace(out))
	}
	return nil
}

var _ termwright.Provider = (*tmuxProvider)(nil)
