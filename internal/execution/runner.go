package execution

import (
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/roach88/bddkit/internal/scenario"
)

// Runner executes scenario definitions.
//
// A Runner holds no per-run state and is safe for concurrent use; every
// call to Run owns its own ResultSet. Step bodies get no timeout: a step
// that never returns blocks its Run forever.
type Runner struct {
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-step diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner. By default it logs nothing.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes def and returns the tested scenario. def must not be nil.
//
// Run never returns an error and never panics because of a step: failures
// and panics from step bodies are captured into the ResultSet.
func (r *Runner) Run(def *scenario.Definition) *TestedScenario {
	results := &ResultSet{checksConfigured: len(def.ExceptionChecks) > 0}
	log := r.logger.With("feature", def.Scenario.Feature, "scenario", def.Scenario.Title)

	r.execute(def, results, log)

	tested := &TestedScenario{scenario: def.Scenario, results: results}
	outcome := Classify(results)
	log.Info("scenario executed", "category", outcome.Category.String())
	return tested
}

func (r *Runner) execute(def *scenario.Definition, results *ResultSet, log *slog.Logger) {
	// Phase 1: setup. The first failure invalidates everything downstream.
	for i, action := range def.Setup {
		if err := capture(action); err != nil {
			results.recordSetupFailure(err)
			log.Debug("setup action failed", "phase", "setup", "step", i, "error", err)
			return
		}
		log.Debug("setup action passed", "phase", "setup", "step", i)
	}

	// Phase 2: trigger.
	if err := capture(def.Trigger); err != nil {
		results.recordTriggerFailure(err)
		log.Debug("trigger action failed", "phase", "trigger", "error", err)

		// Exception checks all run; assertions never run after a failed trigger.
		for i, check := range def.ExceptionChecks {
			if checkErr := captureCheck(check, err); checkErr != nil {
				results.recordExceptionCheckFailure(checkErr)
				log.Debug("exception check failed", "phase", "exception_check", "step", i, "error", checkErr)
				continue
			}
			log.Debug("exception check passed", "phase", "exception_check", "step", i)
		}
		return
	}
	log.Debug("trigger action passed", "phase", "trigger")

	// Phase 3: assertions, no short-circuit.
	for i, assertion := range def.Assertions {
		if err := capture(assertion); err != nil {
			results.recordAssertionFailure(err)
			log.Debug("assertion failed", "phase", "assertion", "step", i, "error", err)
			continue
		}
		log.Debug("assertion passed", "phase", "assertion", "step", i)
	}
}

// capture runs a step body, turning a panic into a returned error.
// A nil body counts as a step that succeeds.
func capture(body scenario.Action) (err error) {
	if body == nil {
		return nil
	}
	defer func() {
		if v := recover(); v != nil {
			err = panicToError(v)
		}
	}()
	return body()
}

func captureCheck(check scenario.ExceptionCheck, triggerErr error) (err error) {
	if check == nil {
		return nil
	}
	defer func() {
		if v := recover(); v != nil {
			err = panicToError(v)
		}
	}()
	return check(triggerErr)
}

func panicToError(v any) error {
	if e, ok := v.(error); ok {
		return e
	}
	return &PanicError{Value: v, Stack: debug.Stack()}
}
