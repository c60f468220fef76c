package execution

import "slices"

// ResultSet accumulates the failures captured during one run.
//
// It is owned by a single run and is never shared between runs. Outside
// this package it is read-only.
type ResultSet struct {
	setupFailure          error
	triggerFailure        error
	checksConfigured      bool
	failedExceptionChecks []error
	failedAssertions      []error
}

// SetupFailure returns the failure of the first failing setup action, or nil.
func (r *ResultSet) SetupFailure() error { return r.setupFailure }

// TriggerFailure returns the failure of the trigger action, or nil.
func (r *ResultSet) TriggerFailure() error { return r.triggerFailure }

// ExceptionChecksConfigured reports whether the scenario declared any
// exception check.
func (r *ResultSet) ExceptionChecksConfigured() bool { return r.checksConfigured }

// FailedExceptionChecks returns the errors of failing exception checks in
// declaration order. The slice is a copy; the errors are the originals.
func (r *ResultSet) FailedExceptionChecks() []error {
	return slices.Clone(r.failedExceptionChecks)
}

// FailedAssertions returns the errors of all failing assertions in
// declaration order. The slice is a copy; the errors are the originals.
func (r *ResultSet) FailedAssertions() []error {
	return slices.Clone(r.failedAssertions)
}

// recordSetupFailure keeps only the first setup failure.
func (r *ResultSet) recordSetupFailure(err error) {
	if r.setupFailure == nil {
		r.setupFailure = err
	}
}

// recordTriggerFailure keeps only the first trigger failure.
func (r *ResultSet) recordTriggerFailure(err error) {
	if r.triggerFailure == nil {
		r.triggerFailure = err
	}
}

func (r *ResultSet) recordExceptionCheckFailure(err error) {
	r.failedExceptionChecks = append(r.failedExceptionChecks, err)
}

func (r *ResultSet) recordAssertionFailure(err error) {
	r.failedAssertions = append(r.failedAssertions, err)
}
