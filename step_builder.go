package termwright

import "time"

// ScenarioBuilder assembles an ordered step list into an immutable
// Scenario.
type ScenarioBuilder interface {
	// WithSession overrides the backend session name (defaults to the
	// scenario name).
	WithSession(name string) ScenarioBuilder

	// WithTimeout sets the default matcher timeout for steps that do
	// not specify their own.
	WithTimeout(d time.Duration) ScenarioBuilder

	// WithPollInterval sets the default matcher poll cadence.
	WithPollInterval(d time.Duration) ScenarioBuilder

	// Do opens the first step.
	Do() StepBuilder

	Build() *Scenario
}

type StepBuilder interface {
	Type(text string) StepBuilder // literal text
	Press(k Key) StepBuilder      // symbolic key
	Line(text string) StepBuilder // shorthand Type(text).Press(KeyEnter)

	// Expect makes the step wait for substr to appear on screen after
	// its keys are delivered. Steps without an expectation are fire and
	// forget.
	Expect(substr string) StepBuilder
	Within(d time.Duration) StepBuilder
	Every(d time.Duration) StepBuilder

	Then() StepBuilder
	Done() ScenarioBuilder
}

// NewScenario starts a builder for a named scenario.
func NewScenario(name string) ScenarioBuilder {
	return &scenarioBuilder{sc: &Scenario{
		name:     name,
		session:  name,
		timeout:  DefaultStepTimeout,
		interval: DefaultPollInterval,
	}}
}

type scenarioBuilder struct {
	sc *Scenario
}

func (b *scenarioBuilder) WithSession(name string) ScenarioBuilder {
	b.sc.session = name
	return b
}

func (b *scenarioBuilder) WithTimeout(d time.Duration) ScenarioBuilder {
	b.sc.timeout = d
	return b
}

func (b *scenarioBuilder) WithPollInterval(d time.Duration) ScenarioBuilder {
	b.sc.interval = d
	return b
}

func (b *scenarioBuilder) Do() StepBuilder {
	return &stepBuilder{parent: b, currentStep: &Step{}}
}

func (b *scenarioBuilder) Build() *Scenario {
	return b.sc
}

type stepBuilder struct {
	parent      *scenarioBuilder
	currentStep *Step
}

func (s *stepBuilder) Type(text string) StepBuilder {
	s.currentStep.Events = append(s.currentStep.Events, Text(text))
	return s
}

func (s *stepBuilder) Press(k Key) StepBuilder {
	s.currentStep.Events = append(s.currentStep.Events, Press(k))
	return s
}

func (s *stepBuilder) Line(text string) StepBuilder {
	return s.Type(text).Press(KeyEnter)
}

func (s *stepBuilder) Expect(substr string) StepBuilder {
	s.currentStep.Expect = substr
	return s
}

func (s *stepBuilder) Within(d time.Duration) StepBuilder {
	s.currentStep.Timeout = d
	return s
}

func (s *stepBuilder) Every(d time.Duration) StepBuilder {
	s.currentStep.Interval = d
	return s
}

func (s *stepBuilder) Then() StepBuilder {
	s.parent.sc.steps = append(s.parent.sc.steps, *s.currentStep)

	return &stepBuilder{
		parent:      s.parent,
		currentStep: &Step{},
	}
}

func (s *stepBuilder) Done() ScenarioBuilder {
	s.parent.sc.steps = append(s.parent.sc.steps, *s.currentStep)
	return s.parent
}
