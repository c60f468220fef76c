package execution

import (
	"github.com/roach88/bddkit/internal/scenario"
)

// fixture is a scenario with two steps per phase whose failures and call
// counts are controlled by the test.
type fixture struct {
	setupErrs     [2]error
	triggerErr    error
	checkErrs     [2]error
	assertionErrs [2]error

	setupCalls     [2]int
	triggerCalls   int
	checkCalls     [2]int
	checkInputs    []error
	assertionCalls [2]int
}

func (f *fixture) setup(i int) scenario.Action {
	return func() error {
		f.setupCalls[i]++
		return f.setupErrs[i]
	}
}

func (f *fixture) trigger() error {
	f.triggerCalls++
	return f.triggerErr
}

func (f *fixture) check(i int) scenario.ExceptionCheck {
	return func(err error) error {
		f.checkCalls[i]++
		f.checkInputs = append(f.checkInputs, err)
		return f.checkErrs[i]
	}
}

func (f *fixture) assertion(i int) scenario.Action {
	return func() error {
		f.assertionCalls[i]++
		return f.assertionErrs[i]
	}
}

// withResultsCheck builds a scenario with assertions and no exception checks.
func (f *fixture) withResultsCheck() *scenario.Definition {
	return scenario.New("Orders", "placing an order").
		Given("a customer", f.setup(0)).
		Given("a product in stock", f.setup(1)).
		When("the customer places an order", f.trigger).
		Then("the order is stored", f.assertion(0)).
		Then("stock is reduced", f.assertion(1)).
		MustBuild()
}

// withResultsAndExceptionCheck also declares two exception checks.
func (f *fixture) withResultsAndExceptionCheck() *scenario.Definition {
	return scenario.New("Orders", "placing an order for a missing product").
		Given("a customer", f.setup(0)).
		Given("a product out of stock", f.setup(1)).
		When("the customer places an order", f.trigger).
		ThenFails("the order is rejected", f.check(0)).
		ThenFails("the reason is out of stock", f.check(1)).
		Then("the order is stored", f.assertion(0)).
		Then("stock is reduced", f.assertion(1)).
		MustBuild()
}

func (f *fixture) totalAssertionCalls() int {
	return f.assertionCalls[0] + f.assertionCalls[1]
}

func (f *fixture) totalCheckCalls() int {
	return f.checkCalls[0] + f.checkCalls[1]
}
