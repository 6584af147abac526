// Package local provides a session backend that hosts the process in a
// pseudo-terminal on the local machine, with no multiplexer involved.
package local

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/creack/pty"

	"go.alt-gnome.ru/termwright"
)

var DefaultShell = []string{"sh"}

type Option func(*localProvider)

// WithCommand sets the command started inside new sessions.
func WithCommand(cmd ...string) Option {
	return func(p *localProvider) {
		p.cmd = cmd
	}
}

func WithEnv(env ...string) Option {
	return func(p *localProvider) {
		p.env = append(p.env, env...)
	}
}

func WithSize(cols, rows int) Option {
	return func(p *localProvider) {
		p.cols, p.rows = cols, rows
	}
}

type localProvider struct {
	cmd  []string
	env  []string
	cols int
	rows int

	mu   sync.Mutex
	live map[string]bool
}

func Provider(opts ...Option) *localProvider {
	p := &localProvider{
		cmd:  DefaultShell,
		cols: 80,
		rows: 24,
		live: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *localProvider) Open(ctx context.Context, name string) (termwright.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &termwright.CreateError{Session: name, Err: err}
	}

	p.mu.Lock()
	if p.live[name] {
		p.mu.Unlock()
		return nil, &termwright.CreateError{Session: name, Err: termwright.ErrSessionExists}
	}
	p.live[name] = true
	p.mu.Unlock()

	c := exec.Command(p.cmd[0], p.cmd[1:]...)
	if len(p.env) > 0 {
		c.Env = p.env
	}

	ptmx, err := pty.StartWithSize(c, &pty.Winsize{
		Cols: uint16(p.cols),
		Rows: uint16(p.rows),
	})
	if err != nil {
		p.release(name)
		return nil, &termwright.CreateError{Session: name, Err: fmt.Errorf("start pty: %w", err)}
	}

	sess := &session{
		p:          p,
		name:       name,
		cmd:        c,
		pty:        ptmx,
		rows:       p.rows,
		readerDone: make(chan struct{}),
	}

	go sess.read()
	go func() {
		_ = c.Wait()
		close(sess.readerDone)
	}()

	return sess, nil
}

func (p *localProvider) release(name string) {
	p.mu.Lock()
	delete(p.live, name)
	p.mu.Unlock()
}

type session struct {
	p    *localProvider
	name string
	cmd  *exec.Cmd
	pty  ptyFile
	rows int

	mu     sync.Mutex
	raw    strings.Builder
	closed bool

	readerDone chan struct{}
	closeOnce  sync.Once
}

// ptyFile is the subset of *os.File the session needs.
type ptyFile interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

func (s *session) read() {
	buf := make([]byte, 1024)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.raw.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *session) Name() string { return s.name }

func (s *session) Send(ev termwright.KeyEvent) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return &termwright.IOError{Session: s.name, Err: termwright.ErrSessionClosed}
	}

	data := ev.Text
	if ev.Key != termwright.KeyNone {
		data = ev.Key.Sequence()
	}
	if _, err := s.pty.Write([]byte(data)); err != nil {
		return &termwright.IOError{Session: s.name, Err: err}
	}
	return nil
}

// ansiEscapes matches CSI and OSC sequences. The pty carries whatever
// the program emits; matching wants plain text.
var ansiEscapes = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\][^\x07]*\x07`)

// Capture returns the last screenful of output, normalized to plain
// lines. Without a full terminal emulator the rolling tail of the
// output stream stands in for the rendered screen.
func (s *session) Capture() ([]string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, &termwright.IOError{Session: s.name, Err: termwright.ErrSessionClosed}
	}
	raw := s.raw.String()
	s.mu.Unlock()

	text := ansiEscapes.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > s.rows {
		lines = lines[len(lines)-s.rows:]
	}
	return lines, nil
}

// Close force-terminates the hosted process and frees the pty. Safe to
// call more than once.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.readerDone
		_ = s.pty.Close()
		s.p.release(s.name)
	})
	return nil
}

var _ termwright.Provider = (*localProvider)(nil)
