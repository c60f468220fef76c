// Package execution runs scenario definitions and classifies their outcome.
//
// # Phases
//
// A run executes the phases of a scenario.Definition in a fixed order:
//
//  1. Setup actions, in order. The first failure is recorded and every
//     later phase is skipped.
//  2. The trigger action, once. If it fails, the failure is recorded. With
//     no exception checks configured the run ends there; otherwise every
//     check runs against the trigger failure and each failing check is
//     recorded. Assertions are skipped whenever the trigger failed.
//  3. Outcome assertions, in order, only after a successful trigger. Every
//     failing assertion is recorded, not just the first.
//
// Nothing a step returns or panics with escapes Runner.Run. Failures are
// data in a ResultSet until the caller asks for an error.
//
// # Outcome
//
// Classify maps a ResultSet to exactly one Category, checked in this order:
//
//	SetupFailed             -> *SetupFailedError
//	UncheckedTriggerFailure -> *UncheckedTriggerFailureError
//	ExceptionChecksFailed   -> *ExceptionChecksFailedError
//	AssertionsFailed        -> *AssertionsFailedError
//	Passed                  -> nil
//
// Every payload holds the exact error values the step bodies returned, so
// callers may compare them with == or errors.Is.
//
// # Usage
//
//	tested := execution.NewRunner().Run(def)
//	if err := tested.Err(); err != nil {
//	    t.Fatal(err)
//	}
//	if err := tested.Publish(ctx, journal); err != nil {
//	    log.Println(err)
//	}
package execution
