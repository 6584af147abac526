package termwright

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultStepTimeout bounds the output matcher for steps that do not
// set their own timeout.
const DefaultStepTimeout = 10 * time.Second

// StepStatus tracks a step through its lifecycle. Steps move from
// StepPending through StepKeysSent and, when an expectation is set,
// StepMatchCheck, ending in StepPassed or StepFailed. Steps after the
// first failure stay StepPending.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepKeysSent
	StepMatchCheck
	StepPassed
	StepFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "PENDING"
	case StepKeysSent:
		return "KEYS_SENT"
	case StepMatchCheck:
		return "MATCH_CHECK"
	case StepPassed:
		return "PASSED"
	case StepFailed:
		return "FAILED"
	}
	return fmt.Sprintf("StepStatus(%d)", int(s))
}

// Step is one immutable unit of interaction: an ordered key sequence
// and an optional output expectation checked after delivery.
type Step struct {
	Events   []KeyEvent
	Expect   string
	Timeout  time.Duration
	Interval time.Duration
}

func (st Step) describe() string {
	parts := make([]string, 0, len(st.Events)+1)
	for _, ev := range st.Events {
		parts = append(parts, ev.String())
	}
	if st.Expect != "" {
		parts = append(parts, fmt.Sprintf("expect %q", st.Expect))
	}
	return strings.Join(parts, " ")
}

// StepResult records the terminal status of one step after a run.
type StepResult struct {
	Step   Step
	Status StepStatus
	Err    error
}

// Result reports a full scenario run. Err is nil when every step
// passed; otherwise it is the *StepError of the first failure.
type Result struct {
	Scenario string
	Steps    []StepResult
	Err      error
}

// Passed reports whether every step ran and passed.
func (r *Result) Passed() bool { return r.Err == nil }

// Report renders a per-step summary: which steps ran, which one failed
// and why. Deterministic output, suitable for snapshot assertions.
func (r *Result) Report() string {
	var b strings.Builder
	verdict := "PASSED"
	if !r.Passed() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&b, "scenario %q: %s\n", r.Scenario, verdict)
	for i, sr := range r.Steps {
		fmt.Fprintf(&b, "  %d. %-7s %s\n", i+1, sr.Status, sr.Step.describe())
		if sr.Err != nil {
			for _, line := range strings.Split(sr.Err.Error(), "\n") {
				fmt.Fprintf(&b, "     %s\n", line)
			}
		}
	}
	return b.String()
}

// Scenario is a strictly ordered list of steps driven against one
// session. Build one with NewScenario.
type Scenario struct {
	name     string
	session  string
	steps    []Step
	timeout  time.Duration
	interval time.Duration
}

// Name returns the scenario's display name.
func (sc *Scenario) Name() string { return sc.name }

// SessionName returns the backend session name the scenario should run
// in. Concurrent runs must use disjoint session names.
func (sc *Scenario) SessionName() string { return sc.session }

// Steps returns a copy of the ordered step list.
func (sc *Scenario) Steps() []Step {
	out := make([]Step, len(sc.steps))
	copy(out, sc.steps)
	return out
}

// Run drives the scenario against an already-open session, halting at
// the first failed step. It never closes the session; lifecycle belongs
// to the caller (see Runner.Run for the managed variant).
func (sc *Scenario) Run(ctx context.Context, sess Session) *Result {
	log := zerolog.Ctx(ctx)
	res := &Result{Scenario: sc.name, Steps: make([]StepResult, len(sc.steps))}
	for i := range sc.steps {
		res.Steps[i] = StepResult{Step: sc.steps[i], Status: StepPending}
	}

	for i, step := range sc.steps {
		log.Debug().Int("step", i+1).Str("keys", step.describe()).Msg("running step")

		if err := sc.runStep(ctx, sess, i, step, res); err != nil {
			res.Steps[i].Status = StepFailed
			res.Steps[i].Err = err
			res.Err = &StepError{Index: i, Step: step, Err: err}
			log.Error().Int("step", i+1).Err(err).Msg("step failed")
			return res
		}
		res.Steps[i].Status = StepPassed
	}
	return res
}

// runStep delivers the step's key events in order and, when an
// expectation is set, waits for it. A send failure aborts immediately;
// events of distinct steps never interleave because steps run strictly
// sequentially.
func (sc *Scenario) runStep(ctx context.Context, sess Session, i int, step Step, res *Result) error {
	res.Steps[i].Status = StepKeysSent
	for _, ev := range step.Events {
		if err := sess.Send(ev); err != nil {
			return fmt.Errorf("send %s: %w", ev, err)
		}
	}

	if step.Expect == "" {
		return nil
	}

	res.Steps[i].Status = StepMatchCheck
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = sc.timeout
	}
	interval := step.Interval
	if interval <= 0 {
		interval = sc.interval
	}

	matched, last, err := WaitFor(ctx, sess, step.Expect, timeout, interval)
	if err != nil {
		return err
	}
	if !matched {
		return &StepTimeoutError{Expected: step.Expect, Timeout: timeout, LastScreen: last}
	}
	return nil
}
