package scenario

import (
	"errors"
	"fmt"
)

// Action is the body of a setup action, the trigger action, or an outcome
// assertion. A non-nil error (or a panic) marks the step as failed.
type Action func() error

// ExceptionCheck inspects the failure returned by the trigger action.
// It returns a non-nil error when that failure is not the expected one.
type ExceptionCheck func(triggerErr error) error

// Definition binds scenario metadata to the step bodies that run.
// Slices are in declaration order; execution follows that order.
type Definition struct {
	Scenario        Scenario
	Setup           []Action
	Trigger         Action
	ExceptionChecks []ExceptionCheck
	Assertions      []Action
}

// Validate checks that the definition can be executed.
func (d *Definition) Validate() error {
	if err := d.Scenario.Validate(); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	if d.Trigger == nil {
		return errors.New("trigger action is required")
	}
	for i, a := range d.Setup {
		if a == nil {
			return fmt.Errorf("setup[%d]: body is nil", i)
		}
	}
	for i, c := range d.ExceptionChecks {
		if c == nil {
			return fmt.Errorf("exception_checks[%d]: body is nil", i)
		}
	}
	for i, a := range d.Assertions {
		if a == nil {
			return fmt.Errorf("assertions[%d]: body is nil", i)
		}
	}
	return nil
}

// Builder assembles a Definition step by step.
// The first misuse is remembered and reported by Build.
type Builder struct {
	def      Definition
	hasWhen  bool
	firstErr error
}

// New starts a scenario definition.
func New(feature, title string) *Builder {
	return &Builder{def: Definition{Scenario: Scenario{Feature: feature, Title: title}}}
}

// Given adds a setup action. Setup actions must come before When.
func (b *Builder) Given(description string, body Action) *Builder {
	if b.hasWhen {
		b.fail(fmt.Errorf("given %q: setup actions must precede the trigger", description))
		return b
	}
	if body == nil {
		b.fail(fmt.Errorf("given %q: body is nil", description))
		return b
	}
	b.def.Setup = append(b.def.Setup, body)
	b.addStep(KindGiven, description)
	return b
}

// When sets the trigger action. It may be called once.
func (b *Builder) When(description string, body Action) *Builder {
	if b.hasWhen {
		b.fail(fmt.Errorf("when %q: trigger already set", description))
		return b
	}
	if body == nil {
		b.fail(fmt.Errorf("when %q: body is nil", description))
		return b
	}
	b.hasWhen = true
	b.def.Trigger = body
	b.addStep(KindWhen, description)
	return b
}

// ThenFails adds an exception check run against the trigger failure.
func (b *Builder) ThenFails(description string, check ExceptionCheck) *Builder {
	if !b.hasWhen {
		b.fail(fmt.Errorf("then fails %q: trigger must be set first", description))
		return b
	}
	if check == nil {
		b.fail(fmt.Errorf("then fails %q: check is nil", description))
		return b
	}
	b.def.ExceptionChecks = append(b.def.ExceptionChecks, check)
	b.addStep(KindThenFails, description)
	return b
}

// Then adds an outcome assertion.
func (b *Builder) Then(description string, body Action) *Builder {
	if !b.hasWhen {
		b.fail(fmt.Errorf("then %q: trigger must be set first", description))
		return b
	}
	if body == nil {
		b.fail(fmt.Errorf("then %q: body is nil", description))
		return b
	}
	b.def.Assertions = append(b.def.Assertions, body)
	b.addStep(KindThen, description)
	return b
}

// Build returns the assembled definition.
func (b *Builder) Build() (*Definition, error) {
	if b.firstErr != nil {
		return nil, b.firstErr
	}
	def := b.def
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// MustBuild is like Build but panics on error. Intended for tests.
func (b *Builder) MustBuild() *Definition {
	def, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("scenario.MustBuild: %v", err))
	}
	return def
}

func (b *Builder) addStep(kind StepKind, description string) {
	b.def.Scenario.Steps = append(b.def.Scenario.Steps, Step{Kind: kind, Description: description})
}

func (b *Builder) fail(err error) {
	if b.firstErr == nil {
		b.firstErr = err
	}
}
