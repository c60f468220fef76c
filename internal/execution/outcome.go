package execution

import (
	"slices"

	"github.com/roach88/bddkit/internal/docs"
)

// Category is the single classification of a completed run.
type Category int

const (
	// CategoryPassed means nothing failed, or the trigger failed and every
	// exception check accepted that failure.
	CategoryPassed Category = iota
	// CategorySetupFailed means a setup action failed.
	CategorySetupFailed
	// CategoryUncheckedTriggerFailure means the trigger failed and no
	// exception check was declared.
	CategoryUncheckedTriggerFailure
	// CategoryExceptionChecksFailed means the trigger failed and at least
	// one exception check rejected that failure.
	CategoryExceptionChecksFailed
	// CategoryAssertionsFailed means the trigger succeeded and at least one
	// assertion failed.
	CategoryAssertionsFailed
)

// String returns the category name used in logs and reports.
func (c Category) String() string {
	switch c {
	case CategoryPassed:
		return "passed"
	case CategorySetupFailed:
		return "setup_failed"
	case CategoryUncheckedTriggerFailure:
		return "unchecked_trigger_failure"
	case CategoryExceptionChecksFailed:
		return "exception_checks_failed"
	case CategoryAssertionsFailed:
		return "assertions_failed"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a run. Only the payload fields that
// belong to Category are set.
type Outcome struct {
	Category Category

	SetupFailure          error   // CategorySetupFailed
	TriggerFailure        error   // CategoryUncheckedTriggerFailure, CategoryExceptionChecksFailed
	FailedExceptionChecks []error // CategoryExceptionChecksFailed
	FailedAssertions      []error // CategoryAssertionsFailed
}

// Classify maps a completed ResultSet to its Outcome. It is pure: calling
// it repeatedly on the same ResultSet yields equal outcomes holding the
// same error values.
func Classify(r *ResultSet) Outcome {
	switch {
	case r.setupFailure != nil:
		return Outcome{
			Category:     CategorySetupFailed,
			SetupFailure: r.setupFailure,
		}
	case r.triggerFailure != nil && len(r.failedExceptionChecks) == 0 && !r.checksConfigured:
		return Outcome{
			Category:       CategoryUncheckedTriggerFailure,
			TriggerFailure: r.triggerFailure,
		}
	case r.triggerFailure != nil && len(r.failedExceptionChecks) > 0:
		return Outcome{
			Category:              CategoryExceptionChecksFailed,
			TriggerFailure:        r.triggerFailure,
			FailedExceptionChecks: slices.Clone(r.failedExceptionChecks),
		}
	case len(r.failedAssertions) > 0:
		return Outcome{
			Category:         CategoryAssertionsFailed,
			FailedAssertions: slices.Clone(r.failedAssertions),
		}
	default:
		return Outcome{Category: CategoryPassed}
	}
}

// Passed reports whether the outcome is CategoryPassed.
func (o Outcome) Passed() bool {
	return o.Category == CategoryPassed
}

// Status converts the outcome to the status handed to doc publishers.
func (o Outcome) Status() docs.TestStatus {
	if o.Passed() {
		return docs.StatusPassed
	}
	return docs.StatusFailed
}

// Err returns the structured error for the outcome, or nil if it passed.
// A fresh error value is built on every call; its payload errors are the
// captured originals.
func (o Outcome) Err() error {
	switch o.Category {
	case CategoryPassed:
		return nil
	case CategorySetupFailed:
		return &SetupFailedError{Err: o.SetupFailure}
	case CategoryUncheckedTriggerFailure:
		return &UncheckedTriggerFailureError{Err: o.TriggerFailure}
	case CategoryExceptionChecksFailed:
		return &ExceptionChecksFailedError{
			TriggerErr:   o.TriggerFailure,
			FailedChecks: slices.Clone(o.FailedExceptionChecks),
		}
	case CategoryAssertionsFailed:
		return &AssertionsFailedError{Failed: slices.Clone(o.FailedAssertions)}
	default:
		return nil
	}
}
