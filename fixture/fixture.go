// Package fixture prepares file-system preconditions around a scenario
// and asserts postconditions after it, with unconditional cleanup.
package fixture

import (
	"fmt"
	"strings"
)

// Expectation is a fixture's postcondition on path existence.
type Expectation int

const (
	// ExpectNone skips the postcondition check for this fixture.
	ExpectNone Expectation = iota
	ExpectExists
	ExpectAbsent
)

func (e Expectation) String() string {
	switch e {
	case ExpectExists:
		return "exists"
	case ExpectAbsent:
		return "absent"
	}
	return "none"
}

// Fixture describes one managed path. Create makes Apply materialize it
// before the session opens; Expect makes Verify check it afterwards.
// Both may be set on the same fixture.
type Fixture struct {
	Path string

	// Dir marks the path as a directory to create instead of a file.
	Dir bool

	// Content is written when creating a file fixture. Template names a
	// file to copy content from instead; it wins when both are set.
	Content  []byte
	Template string

	Create bool
	Expect Expectation

	// Remove marks the path for removal during Cleanup even when Apply
	// did not create it, for artifacts the tested program produces.
	Remove bool
}

// SetupError reports a precondition that could not be established.
// Fatal before any session is opened.
type SetupError struct {
	Path string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("fixture setup %q: %v", e.Path, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// Mismatch is one postcondition that did not hold.
type Mismatch struct {
	Path string
	Want Expectation
	Got  Expectation
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: want %s, got %s", m.Path, m.Want, m.Got)
}

// AssertionError collects every postcondition mismatch, not just the
// first, so one verification pass reports the full picture.
type AssertionError struct {
	Mismatches []Mismatch
}

func (e *AssertionError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("%d fixture mismatch(es): %s", len(e.Mismatches), strings.Join(parts, "; "))
}
