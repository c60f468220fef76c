package execution

import (
	"context"
	"sync/atomic"

	"github.com/roach88/bddkit/internal/docs"
	"github.com/roach88/bddkit/internal/scenario"
)

// TestedScenario pairs a scenario with the results of running it.
// It is created by Runner.Run and not modified afterwards.
type TestedScenario struct {
	scenario  scenario.Scenario
	results   *ResultSet
	published atomic.Bool
}

// Scenario returns the scenario metadata exactly as it was defined.
func (t *TestedScenario) Scenario() scenario.Scenario { return t.scenario }

// Results returns the captured failures.
func (t *TestedScenario) Results() *ResultSet { return t.results }

// Outcome classifies the results. See Classify.
func (t *TestedScenario) Outcome() Outcome { return Classify(t.results) }

// Status returns the status that Publish hands to a publisher.
func (t *TestedScenario) Status() docs.TestStatus { return t.Outcome().Status() }

// Err returns the structured outcome error, or nil if the scenario passed.
// It has no side effects; every call returns an equivalent error.
func (t *TestedScenario) Err() error { return t.Outcome().Err() }

// MustPass panics with the outcome error if the scenario did not pass.
func (t *TestedScenario) MustPass() {
	if err := t.Err(); err != nil {
		panic(err)
	}
}

// Publish hands the scenario and its status to p, exactly once.
//
// If ctx is already done, Publish returns ctx.Err() without calling p and
// the scenario may be published later. Once p.Append has been called, any
// further Publish returns ErrAlreadyPublished. An error from p.Append is
// returned unchanged and is not retried.
func (t *TestedScenario) Publish(ctx context.Context, p docs.Publisher) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.published.CompareAndSwap(false, true) {
		return ErrAlreadyPublished
	}
	return p.Append(ctx, t.scenario, t.Status())
}
