package termwright

import "context"

// Provider creates isolated terminal sessions. Implementations live in
// the providers/ subpackages (tmux, local).
type Provider interface {
	Open(ctx context.Context, name string) (Session, error)
}

// PreparableProvider is an optional extension for providers that need
// setup before the first session and teardown after the last one.
type PreparableProvider interface {
	Provider
	Prepare() error
	Cleanup() error
}

// Session is a handle to one isolated terminal instance hosting a
// running process.
type Session interface {
	// Name returns the unique name the session was opened with.
	Name() string

	// Send writes a single key event into the session's input stream.
	// Returns an *IOError if the session is no longer live.
	Send(ev KeyEvent) error

	// Capture returns the currently rendered screen content, one string
	// per visible line. It is side-effect free and reflects the most
	// recent render only, not scrollback.
	Capture() ([]string, error)

	// Close terminates the session and releases backend resources.
	// Closing an already-closed session is a no-op.
	Close() error
}
