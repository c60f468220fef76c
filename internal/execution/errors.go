package execution

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyPublished is returned by TestedScenario.Publish on every call
// after the first one that reached the publisher.
var ErrAlreadyPublished = errors.New("tested scenario already published")

// SetupFailedError reports that a setup action failed, so nothing else ran.
type SetupFailedError struct {
	Err error // the setup action's own error
}

// Error implements the error interface.
func (e *SetupFailedError) Error() string {
	return fmt.Sprintf("setup action failed: %v", e.Err)
}

// Unwrap returns the setup action's error.
func (e *SetupFailedError) Unwrap() error { return e.Err }

// UncheckedTriggerFailureError reports that the trigger action failed and
// the scenario declared no exception check to accept the failure.
type UncheckedTriggerFailureError struct {
	Err error // the trigger action's own error
}

// Error implements the error interface.
func (e *UncheckedTriggerFailureError) Error() string {
	return fmt.Sprintf("unchecked failure in trigger action: %v", e.Err)
}

// Unwrap returns the trigger action's error.
func (e *UncheckedTriggerFailureError) Unwrap() error { return e.Err }

// ExceptionChecksFailedError reports that the trigger action failed and at
// least one exception check decided it was not the expected failure.
type ExceptionChecksFailedError struct {
	TriggerErr   error   // the trigger action's own error
	FailedChecks []error // errors of the rejecting checks, in declaration order
}

// Error implements the error interface.
func (e *ExceptionChecksFailedError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d exception check(s) failed for trigger failure: %v", len(e.FailedChecks), e.TriggerErr)
	writeNumbered(&buf, e.FailedChecks)
	return buf.String()
}

// Unwrap returns the trigger error followed by the check errors.
func (e *ExceptionChecksFailedError) Unwrap() []error {
	out := make([]error, 0, len(e.FailedChecks)+1)
	out = append(out, e.TriggerErr)
	return append(out, e.FailedChecks...)
}

// AssertionsFailedError reports every outcome assertion that failed after a
// successful trigger action.
type AssertionsFailedError struct {
	Failed []error // in declaration order
}

// Error implements the error interface.
func (e *AssertionsFailedError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d assertion(s) failed", len(e.Failed))
	writeNumbered(&buf, e.Failed)
	return buf.String()
}

// Unwrap returns the assertion errors.
func (e *AssertionsFailedError) Unwrap() []error { return e.Failed }

// PanicError carries a non-error value a step body panicked with.
// A step that panics with an error value is recorded as that error instead.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("step panicked: %v", e.Value)
}

// CategoryOf returns the category carried by one of this package's outcome
// errors. Uses errors.As to handle wrapped errors.
func CategoryOf(err error) (Category, bool) {
	var (
		setup     *SetupFailedError
		unchecked *UncheckedTriggerFailureError
		checks    *ExceptionChecksFailedError
		asserts   *AssertionsFailedError
	)
	switch {
	case err == nil:
		return CategoryPassed, false
	case errors.As(err, &setup):
		return CategorySetupFailed, true
	case errors.As(err, &unchecked):
		return CategoryUncheckedTriggerFailure, true
	case errors.As(err, &checks):
		return CategoryExceptionChecksFailed, true
	case errors.As(err, &asserts):
		return CategoryAssertionsFailed, true
	default:
		return CategoryPassed, false
	}
}

func writeNumbered(buf *strings.Builder, errs []error) {
	for i, err := range errs {
		fmt.Fprintf(buf, "\n  [%d] %v", i+1, err)
	}
}
