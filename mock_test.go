package termwright_test

import (
	"context"
	"sync"

	"go.alt-gnome.ru/termwright"
)

// fakeSession plays back a scripted sequence of screens: every Capture
// advances one frame, the last frame repeats forever.
type fakeSession struct {
	name string

	mu       sync.Mutex
	screens  [][]string
	frame    int
	sent     []termwright.KeyEvent
	sendErr  error
	captErr  error
	closes   int
	captures int
}

func (s *fakeSession) Name() string { return s.name }

func (s *fakeSession) Send(ev termwright.KeyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, ev)
	return nil
}

func (s *fakeSession) Capture() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures++
	if s.captErr != nil {
		return nil, s.captErr
	}
	if len(s.screens) == 0 {
		return nil, nil
	}
	screen := s.screens[s.frame]
	if s.frame < len(s.screens)-1 {
		s.frame++
	}
	return screen, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *fakeSession) sentEvents() []termwright.KeyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]termwright.KeyEvent, len(s.sent))
	copy(out, s.sent)
	return out
}

// fakeProvider hands out one pre-built fake session per Open call.
type fakeProvider struct {
	mu       sync.Mutex
	sessions []*fakeSession
	openErr  error
	opens    int
}

func (p *fakeProvider) Open(_ context.Context, name string) (termwright.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	sess := &fakeSession{name: name}
	if p.opens < len(p.sessions) {
		sess = p.sessions[p.opens]
		sess.name = name
	}
	p.opens++
	return sess, nil
}

// preparableProvider wraps fakeProvider with lifecycle hooks.
type preparableProvider struct {
	fakeProvider
	prepares int
	cleanups int
}

func (p *preparableProvider) Prepare() error {
	p.prepares++
	return nil
}

func (p *preparableProvider) Cleanup() error {
	p.cleanups++
	return nil
}
