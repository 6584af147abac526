package termwright

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval is used by WaitFor when the caller passes a
// non-positive interval.
const DefaultPollInterval = 50 * time.Millisecond

// WaitFor polls the session's screen until substr appears as a literal
// substring of the joined visible lines, or timeout elapses. A miss is
// not an error: the first return value reports whether a match was
// found, the second is the last captured screen. The error return is
// reserved for backend failures (capture errors, context cancellation).
//
// The screen is checked once before any waiting, so a substring already
// visible at call time matches immediately.
func WaitFor(ctx context.Context, s Session, substr string, timeout, interval time.Duration) (bool, []string, error) {
	if substr == "" {
		return true, nil, nil
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	log := zerolog.Ctx(ctx)

	lines, err := s.Capture()
	if err != nil {
		return false, nil, err
	}
	if strings.Contains(strings.Join(lines, "\n"), substr) {
		return true, lines, nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, lines, ctx.Err()
		case <-deadline.C:
			log.Debug().
				Str("session", s.Name()).
				Str("expected", substr).
				Dur("timeout", timeout).
				Msg("wait for output timed out")
			return false, lines, nil
		case <-ticker.C:
			lines, err = s.Capture()
			if err != nil {
				return false, lines, err
			}
			if strings.Contains(strings.Join(lines, "\n"), substr) {
				return true, lines, nil
			}
		}
	}
}
