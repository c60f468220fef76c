package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bddkit/internal/docs"
	"github.com/roach88/bddkit/internal/scenario"
)

// MockPublisher records Append calls.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Append(ctx context.Context, sc scenario.Scenario, status docs.TestStatus) error {
	args := m.Called(ctx, sc, status)
	return args.Error(0)
}

func newMockPublisher() *MockPublisher {
	p := new(MockPublisher)
	p.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return p
}

func TestPublish_ScenarioIsPublishedUnchanged(t *testing.T) {
	f := &fixture{}
	tested := NewRunner().Run(f.withResultsCheck())
	p := newMockPublisher()

	require.NoError(t, tested.Publish(context.Background(), p))

	p.AssertNumberOfCalls(t, "Append", 1)
	p.AssertCalled(t, "Append", mock.Anything, tested.Scenario(), mock.Anything)
}

func TestPublish_PassedScenarioIsPublishedAsPassed(t *testing.T) {
	f := &fixture{}
	tested := NewRunner().Run(f.withResultsCheck())
	p := newMockPublisher()

	require.NoError(t, tested.Publish(context.Background(), p))

	p.AssertNumberOfCalls(t, "Append", 1)
	p.AssertCalled(t, "Append", mock.Anything, mock.Anything, docs.StatusPassed)
}

func TestPublish_FailedScenarioIsPublishedAsFailed(t *testing.T) {
	f := &fixture{assertionErrs: [2]error{errors.New("order missing"), nil}}
	tested := NewRunner().Run(f.withResultsCheck())
	p := newMockPublisher()

	require.NoError(t, tested.Publish(context.Background(), p))

	p.AssertNumberOfCalls(t, "Append", 1)
	p.AssertCalled(t, "Append", mock.Anything, mock.Anything, docs.StatusFailed)
}

func TestPublish_ContextIsForwarded(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	tested := NewRunner().Run((&fixture{}).withResultsCheck())
	p := newMockPublisher()

	require.NoError(t, tested.Publish(ctx, p))

	p.AssertCalled(t, "Append", ctx, mock.Anything, mock.Anything)
}

func TestPublish_AppendErrorIsReturnedUnchanged(t *testing.T) {
	errSink := errors.New("sink unavailable")
	tested := NewRunner().Run((&fixture{}).withResultsCheck())
	p := new(MockPublisher)
	p.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(errSink)

	err := tested.Publish(context.Background(), p)

	assert.Same(t, errSink, err)
	_, isOutcome := CategoryOf(err)
	assert.False(t, isOutcome)
}

func TestPublish_SecondCallIsRejected(t *testing.T) {
	tested := NewRunner().Run((&fixture{}).withResultsCheck())
	p := newMockPublisher()

	require.NoError(t, tested.Publish(context.Background(), p))
	err := tested.Publish(context.Background(), p)

	assert.ErrorIs(t, err, ErrAlreadyPublished)
	p.AssertNumberOfCalls(t, "Append", 1)
}

func TestPublish_CancelledBeforeDelivery(t *testing.T) {
	tested := NewRunner().Run((&fixture{}).withResultsCheck())
	p := newMockPublisher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tested.Publish(ctx, p)

	assert.ErrorIs(t, err, context.Canceled)
	p.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)

	// The scenario was not delivered, so it can still be published.
	require.NoError(t, tested.Publish(context.Background(), p))
	p.AssertNumberOfCalls(t, "Append", 1)
}

func TestPublish_AfterErrDoesNotChangeScenario(t *testing.T) {
	f := &fixture{triggerErr: errors.New("declined")}
	tested := NewRunner().Run(f.withResultsCheck())
	want := tested.Scenario()
	p := newMockPublisher()

	require.Error(t, tested.Err())
	require.Error(t, tested.Err())
	require.NoError(t, tested.Publish(context.Background(), p))

	p.AssertCalled(t, "Append", mock.Anything, want, docs.StatusFailed)
}

func TestPublish_ToJournal(t *testing.T) {
	var lines []string
	p := docs.PublisherFunc(func(_ context.Context, sc scenario.Scenario, status docs.TestStatus) error {
		lines = append(lines, sc.Title+":"+status.String())
		return nil
	})

	passed := NewRunner().Run((&fixture{}).withResultsCheck())
	failed := NewRunner().Run((&fixture{setupErrs: [2]error{errors.New("x"), nil}}).withResultsCheck())

	require.NoError(t, passed.Publish(context.Background(), p))
	require.NoError(t, failed.Publish(context.Background(), p))

	assert.Equal(t, []string{"placing an order:passed", "placing an order:failed"}, lines)
}

func TestErr_NotReturnedForPassingTest(t *testing.T) {
	tested := NewRunner().Run((&fixture{}).withResultsCheck())

	assert.NoError(t, tested.Err())
	assert.NotPanics(t, tested.MustPass)
}

func TestErr_SetupFailedForErrorInSetupAction(t *testing.T) {
	errSetup := errors.New("no customer")
	f := &fixture{setupErrs: [2]error{errSetup, nil}}
	tested := NewRunner().Run(f.withResultsAndExceptionCheck())

	err := tested.Err()

	var setupErr *SetupFailedError
	require.ErrorAs(t, err, &setupErr)
	assert.Same(t, errSetup, setupErr.Err)
	assert.ErrorIs(t, err, errSetup)
}

func TestErr_UncheckedTriggerFailureIfNoExceptionCheck(t *testing.T) {
	errTrigger := errors.New("payment declined")
	f := &fixture{triggerErr: errTrigger}
	tested := NewRunner().Run(f.withResultsCheck())

	err := tested.Err()

	var unchecked *UncheckedTriggerFailureError
	require.ErrorAs(t, err, &unchecked)
	assert.Same(t, errTrigger, unchecked.Err)
}

func TestErr_ExceptionChecksFailedIfCheckRejectsTriggerFailure(t *testing.T) {
	errTrigger := errors.New("payment declined")
	errCheck := errors.New("expected out of stock")
	f := &fixture{triggerErr: errTrigger, checkErrs: [2]error{errCheck, nil}}
	tested := NewRunner().Run(f.withResultsAndExceptionCheck())

	err := tested.Err()

	var checksErr *ExceptionChecksFailedError
	require.ErrorAs(t, err, &checksErr)
	assert.Same(t, errTrigger, checksErr.TriggerErr)
	require.Len(t, checksErr.FailedChecks, 1)
	assert.Same(t, errCheck, checksErr.FailedChecks[0])
	assert.ErrorIs(t, err, errTrigger)
	assert.ErrorIs(t, err, errCheck)
}

func TestErr_AssertionsFailedIfOneAssertionFailed(t *testing.T) {
	errA := errors.New("order missing")
	f := &fixture{assertionErrs: [2]error{errA, nil}}
	tested := NewRunner().Run(f.withResultsCheck())

	err := tested.Err()

	var assertsErr *AssertionsFailedError
	require.ErrorAs(t, err, &assertsErr)
	require.Len(t, assertsErr.Failed, 1)
	assert.Same(t, errA, assertsErr.Failed[0])
}

func TestErr_AssertionsFailedIfMoreThanOneAssertionFailed(t *testing.T) {
	errA1 := errors.New("order missing")
	errA2 := errors.New("stock unchanged")
	f := &fixture{assertionErrs: [2]error{errA1, errA2}}
	tested := NewRunner().Run(f.withResultsCheck())

	err := tested.Err()

	var assertsErr *AssertionsFailedError
	require.ErrorAs(t, err, &assertsErr)
	require.Len(t, assertsErr.Failed, 2)
	assert.Same(t, errA1, assertsErr.Failed[0])
	assert.Same(t, errA2, assertsErr.Failed[1])
}

func TestErr_IsRepeatable(t *testing.T) {
	errA := errors.New("order missing")
	f := &fixture{assertionErrs: [2]error{errA, nil}}
	tested := NewRunner().Run(f.withResultsCheck())

	first := tested.Err()
	second := tested.Err()

	assert.Equal(t, first, second)
	assert.Equal(t, first.Error(), second.Error())
	var a1, a2 *AssertionsFailedError
	require.ErrorAs(t, first, &a1)
	require.ErrorAs(t, second, &a2)
	assert.Same(t, a1.Failed[0], a2.Failed[0])
	assert.Equal(t, 1, f.assertionCalls[0], "Err must not re-run steps")
}

func TestMustPass_PanicsWithOutcomeError(t *testing.T) {
	errSetup := errors.New("no customer")
	tested := NewRunner().Run((&fixture{setupErrs: [2]error{errSetup, nil}}).withResultsCheck())

	defer func() {
		v := recover()
		require.NotNil(t, v)
		err, ok := v.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, errSetup)
	}()
	tested.MustPass()
}
