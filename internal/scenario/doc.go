// Package scenario describes behavior-driven test scenarios.
//
// A scenario has two halves:
//
//   - Scenario is the metadata (feature, title, ordered step descriptions).
//     It identifies what was tested and is what doc publishers receive.
//   - Definition binds that metadata to the step bodies that actually run:
//     setup actions, one trigger action, optional exception checks, and
//     outcome assertions.
//
// # Building a Definition
//
//	def, err := scenario.New("Checkout", "paying with an empty cart").
//	    Given("an empty cart", func() error { cart = NewCart(); return nil }).
//	    When("the customer checks out", func() error { return cart.Checkout() }).
//	    ThenFails("checkout is rejected", func(err error) error {
//	        if !errors.Is(err, ErrEmptyCart) {
//	            return fmt.Errorf("unexpected failure: %w", err)
//	        }
//	        return nil
//	    }).
//	    Build()
//
// Execution and outcome classification live in package execution.
package scenario
