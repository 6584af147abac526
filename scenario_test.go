package termwright_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.alt-gnome.ru/termwright"
)

func TestScenarioBuilderPreservesStepOrder(t *testing.T) {
	sc := termwright.NewScenario("ordering").
		WithSession("tw-ordering").
		Do().Line("echo one").Expect("one").
		Then().Type("partial").Press(termwright.KeyTab).
		Then().Line(":quit").
		Done().Build()

	steps := sc.Steps()
	require.Len(t, steps, 3)

	assert.Equal(t, "tw-ordering", sc.SessionName())
	assert.Equal(t, []termwright.KeyEvent{
		termwright.Text("echo one"),
		termwright.Press(termwright.KeyEnter),
	}, steps[0].Events)
	assert.Equal(t, "one", steps[0].Expect)
	assert.Equal(t, []termwright.KeyEvent{
		termwright.Text("partial"),
		termwright.Press(termwright.KeyTab),
	}, steps[1].Events)
	assert.Empty(t, steps[1].Expect)
}

func TestScenarioRunAllStepsPass(t *testing.T) {
	sess := &fakeSession{screens: [][]string{{"$ echo one", "one"}}}
	sc := termwright.NewScenario("happy").
		WithPollInterval(time.Millisecond).
		Do().Line("echo one").Expect("one").
		Then().Line(":quit").
		Done().Build()

	res := sc.Run(context.Background(), sess)

	assert.True(t, res.Passed())
	for _, sr := range res.Steps {
		assert.Equal(t, termwright.StepPassed, sr.Status)
	}
	assert.Equal(t, []termwright.KeyEvent{
		termwright.Text("echo one"),
		termwright.Press(termwright.KeyEnter),
		termwright.Text(":quit"),
		termwright.Press(termwright.KeyEnter),
	}, sess.sentEvents())
}

func TestScenarioRunHaltsAtFirstFailure(t *testing.T) {
	sess := &fakeSession{screens: [][]string{{"$ app", "something else entirely"}}}
	sc := termwright.NewScenario("negative").
		Do().Line("app").Expect("Some things you can try").Within(50 * time.Millisecond).Every(5 * time.Millisecond).
		Then().Line(":quit").
		Done().Build()

	res := sc.Run(context.Background(), sess)

	require.False(t, res.Passed())
	assert.Equal(t, termwright.StepFailed, res.Steps[0].Status)
	assert.Equal(t, termwright.StepPending, res.Steps[1].Status, "steps after a failure must not run")

	var stepErr *termwright.StepError
	require.ErrorAs(t, res.Err, &stepErr)
	assert.Equal(t, 0, stepErr.Index)

	var timeoutErr *termwright.StepTimeoutError
	require.ErrorAs(t, res.Err, &timeoutErr)
	assert.Equal(t, "Some things you can try", timeoutErr.Expected)
	assert.Equal(t, []string{"$ app", "something else entirely"}, timeoutErr.LastScreen)

	// Only the first step's keys were delivered.
	assert.Len(t, sess.sentEvents(), 2)
}

func TestScenarioRunSendFailureAbortsStep(t *testing.T) {
	boom := &termwright.IOError{Session: "b0rk", Err: termwright.ErrSessionClosed}
	sess := &fakeSession{sendErr: boom}
	sc := termwright.NewScenario("send failure").
		Do().Line("echo one").Expect("one").
		Done().Build()

	res := sc.Run(context.Background(), sess)

	require.False(t, res.Passed())
	assert.ErrorIs(t, res.Err, termwright.ErrSessionClosed)
	assert.Zero(t, sess.captures, "a failed send must not reach the matcher")
}

func TestScenarioRunFireAndForget(t *testing.T) {
	sess := &fakeSession{}
	sc := termwright.NewScenario("fire and forget").
		Do().Line("export PATH=$PATH:/opt/app/bin").
		Done().Build()

	res := sc.Run(context.Background(), sess)

	assert.True(t, res.Passed())
	assert.Zero(t, sess.captures)
}

func TestRunnerClosesSessionExactlyOnce(t *testing.T) {
	cases := []struct {
		name    string
		screens [][]string
	}{
		{"passing scenario", [][]string{{"one"}}},
		{"failing scenario", [][]string{{"never matches"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess := &fakeSession{screens: tc.screens}
			p := &fakeProvider{sessions: []*fakeSession{sess}}
			sc := termwright.NewScenario("lifecycle").
				Do().Line("echo one").Expect("one").Within(30 * time.Millisecond).Every(5 * time.Millisecond).
				Done().Build()

			_, err := termwright.NewRunner(p).Run(context.Background(), sc)
			require.NoError(t, err)

			assert.Equal(t, 1, sess.closeCount())
		})
	}
}

func TestRunnerPropagatesOpenFailure(t *testing.T) {
	p := &fakeProvider{openErr: &termwright.CreateError{Session: "dup", Err: termwright.ErrSessionExists}}
	sc := termwright.NewScenario("dup").Do().Line("echo").Done().Build()

	_, err := termwright.NewRunner(p).Run(context.Background(), sc)
	assert.ErrorIs(t, err, termwright.ErrSessionExists)
}

func TestResultReport(t *testing.T) {
	sess := &fakeSession{screens: [][]string{{"$ echo hi", "hi"}}}
	sc := termwright.NewScenario("login flow").
		Do().Line("echo hi").Expect("hi").
		Then().Line("missing").Expect("nope").Within(40 * time.Millisecond).Every(10 * time.Millisecond).
		Then().Line("never runs").
		Done().Build()

	res := sc.Run(context.Background(), sess)

	report := res.Report()
	assert.Contains(t, report, `scenario "login flow": FAILED`)
	assert.Contains(t, report, `1. PASSED`)
	assert.Contains(t, report, `2. FAILED`)
	assert.Contains(t, report, `3. PENDING`)
	assert.Contains(t, report, `expected output "nope"`)

	snaps.MatchSnapshot(t, report)
}

func TestStepErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &termwright.StepError{Index: 2, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "step 3")
}
