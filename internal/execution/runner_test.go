package execution

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bddkit/internal/scenario"
)

func TestRun_AllStepsPass(t *testing.T) {
	f := &fixture{}
	tested := NewRunner().Run(f.withResultsCheck())

	assert.Equal(t, [2]int{1, 1}, f.setupCalls)
	assert.Equal(t, 1, f.triggerCalls)
	assert.Equal(t, [2]int{1, 1}, f.assertionCalls)

	rs := tested.Results()
	assert.Nil(t, rs.SetupFailure())
	assert.Nil(t, rs.TriggerFailure())
	assert.Empty(t, rs.FailedExceptionChecks())
	assert.Empty(t, rs.FailedAssertions())
}

func TestRun_SetupFailureSkipsEverythingElse(t *testing.T) {
	errSetup := errors.New("no customer")
	f := &fixture{setupErrs: [2]error{errSetup, nil}}

	tested := NewRunner().Run(f.withResultsAndExceptionCheck())

	assert.Equal(t, [2]int{1, 0}, f.setupCalls, "second setup action must not run")
	assert.Zero(t, f.triggerCalls)
	assert.Zero(t, f.totalCheckCalls())
	assert.Zero(t, f.totalAssertionCalls())
	assert.Same(t, errSetup, tested.Results().SetupFailure())
	assert.Nil(t, tested.Results().TriggerFailure())
}

func TestRun_SecondSetupFailure(t *testing.T) {
	errSetup := errors.New("out of stock")
	f := &fixture{setupErrs: [2]error{nil, errSetup}}

	tested := NewRunner().Run(f.withResultsCheck())

	assert.Equal(t, [2]int{1, 1}, f.setupCalls)
	assert.Zero(t, f.triggerCalls)
	assert.Same(t, errSetup, tested.Results().SetupFailure())
}

func TestRun_TriggerFailureWithoutChecksSkipsAssertions(t *testing.T) {
	errTrigger := errors.New("payment declined")
	f := &fixture{triggerErr: errTrigger}

	tested := NewRunner().Run(f.withResultsCheck())

	assert.Equal(t, 1, f.triggerCalls)
	assert.Zero(t, f.totalAssertionCalls())
	assert.Same(t, errTrigger, tested.Results().TriggerFailure())
	assert.False(t, tested.Results().ExceptionChecksConfigured())
}

func TestRun_TriggerFailureRunsEveryCheck(t *testing.T) {
	errTrigger := errors.New("payment declined")
	errCheck1 := errors.New("wrong error type")
	errCheck2 := errors.New("wrong message")
	f := &fixture{triggerErr: errTrigger, checkErrs: [2]error{errCheck1, errCheck2}}

	tested := NewRunner().Run(f.withResultsAndExceptionCheck())

	assert.Equal(t, [2]int{1, 1}, f.checkCalls, "checks must not short-circuit")
	assert.Zero(t, f.totalAssertionCalls())

	failed := tested.Results().FailedExceptionChecks()
	require.Len(t, failed, 2)
	assert.Same(t, errCheck1, failed[0])
	assert.Same(t, errCheck2, failed[1])
}

func TestRun_ChecksReceiveTriggerFailure(t *testing.T) {
	errTrigger := errors.New("payment declined")
	f := &fixture{triggerErr: errTrigger}

	NewRunner().Run(f.withResultsAndExceptionCheck())

	require.Len(t, f.checkInputs, 2)
	assert.Same(t, errTrigger, f.checkInputs[0])
	assert.Same(t, errTrigger, f.checkInputs[1])
}

func TestRun_AcceptedTriggerFailureSkipsAssertions(t *testing.T) {
	f := &fixture{triggerErr: errors.New("expected")}

	tested := NewRunner().Run(f.withResultsAndExceptionCheck())

	assert.Equal(t, [2]int{1, 1}, f.checkCalls)
	assert.Zero(t, f.totalAssertionCalls())
	assert.Empty(t, tested.Results().FailedExceptionChecks())
	assert.True(t, tested.Results().ExceptionChecksConfigured())
}

func TestRun_ChecksNotConsultedWhenTriggerSucceeds(t *testing.T) {
	f := &fixture{}

	NewRunner().Run(f.withResultsAndExceptionCheck())

	assert.Zero(t, f.totalCheckCalls())
	assert.Equal(t, [2]int{1, 1}, f.assertionCalls)
}

func TestRun_AllAssertionsRunAndAllFailuresKept(t *testing.T) {
	errA1 := errors.New("order missing")
	errA2 := errors.New("stock unchanged")
	f := &fixture{assertionErrs: [2]error{errA1, errA2}}

	tested := NewRunner().Run(f.withResultsCheck())

	assert.Equal(t, [2]int{1, 1}, f.assertionCalls)
	failed := tested.Results().FailedAssertions()
	require.Len(t, failed, 2)
	assert.Same(t, errA1, failed[0])
	assert.Same(t, errA2, failed[1])
}

func TestRun_OnlyFailingAssertionsRecorded(t *testing.T) {
	errA2 := errors.New("stock unchanged")
	f := &fixture{assertionErrs: [2]error{nil, errA2}}

	tested := NewRunner().Run(f.withResultsCheck())

	failed := tested.Results().FailedAssertions()
	require.Len(t, failed, 1)
	assert.Same(t, errA2, failed[0])
}

func TestRun_PanicWithErrorIsCapturedAsThatError(t *testing.T) {
	errBoom := errors.New("boom")
	def := scenario.New("F", "panicking trigger").
		When("it panics", func() error { panic(errBoom) }).
		MustBuild()

	var tested *TestedScenario
	require.NotPanics(t, func() { tested = NewRunner().Run(def) })
	assert.Same(t, errBoom, tested.Results().TriggerFailure())
}

func TestRun_PanicWithValueIsWrapped(t *testing.T) {
	def := scenario.New("F", "panicking assertion").
		When("it runs", func() error { return nil }).
		Then("it panics", func() error { panic("bad state") }).
		MustBuild()

	tested := NewRunner().Run(def)

	failed := tested.Results().FailedAssertions()
	require.Len(t, failed, 1)
	var pe *PanicError
	require.ErrorAs(t, failed[0], &pe)
	assert.Equal(t, "bad state", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Contains(t, pe.Error(), "bad state")
}

func TestRun_PanickingCheckIsRecorded(t *testing.T) {
	def := scenario.New("F", "panicking check").
		When("it fails", func() error { return errors.New("x") }).
		ThenFails("check panics", func(error) error { panic(fmt.Sprintf("unexpected %d", 42)) }).
		MustBuild()

	tested := NewRunner().Run(def)

	require.Len(t, tested.Results().FailedExceptionChecks(), 1)
	assert.Equal(t, CategoryExceptionChecksFailed, tested.Outcome().Category)
}

func TestRun_NilBodiesAreNoOps(t *testing.T) {
	def := &scenario.Definition{
		Scenario:   scenario.Scenario{Title: "hand built"},
		Setup:      []scenario.Action{nil},
		Assertions: []scenario.Action{nil},
	}

	tested := NewRunner().Run(def)
	assert.NoError(t, tested.Err())
}

func TestRun_ScenarioIsUnchanged(t *testing.T) {
	f := &fixture{assertionErrs: [2]error{errors.New("x"), nil}}
	def := f.withResultsCheck()
	before := def.Scenario

	tested := NewRunner().Run(def)

	assert.Equal(t, before, tested.Scenario())
	assert.Equal(t, before, def.Scenario)
}

func TestRun_ResultSetAccessorsReturnCopies(t *testing.T) {
	errA := errors.New("a")
	f := &fixture{assertionErrs: [2]error{errA, nil}}
	tested := NewRunner().Run(f.withResultsCheck())

	failed := tested.Results().FailedAssertions()
	failed[0] = errors.New("overwritten")

	assert.Same(t, errA, tested.Results().FailedAssertions()[0])
}

func TestRun_ConcurrentRunsAreIndependent(t *testing.T) {
	runner := NewRunner()

	const n = 20
	results := make([]*TestedScenario, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		errs[i] = fmt.Errorf("assertion %d", i)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			def := scenario.New("F", fmt.Sprintf("run %d", i)).
				When("it runs", func() error { return nil }).
				Then("it fails", func() error { return errs[i] }).
				MustBuild()
			results[i] = runner.Run(def)
		}(i)
	}
	wg.Wait()

	for i, tested := range results {
		failed := tested.Results().FailedAssertions()
		require.Len(t, failed, 1)
		assert.Same(t, errs[i], failed[0])
	}
}

func TestRun_LogsClassification(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := &fixture{setupErrs: [2]error{errors.New("no customer"), nil}}

	NewRunner(WithLogger(logger)).Run(f.withResultsCheck())

	out := buf.String()
	assert.Contains(t, out, "setup action failed")
	assert.Contains(t, out, "category=setup_failed")
	assert.Contains(t, out, `scenario="placing an order"`)
}
