package scenario

import "fmt"

// StepKind tags a step with its role in the scenario.
type StepKind string

// Step kinds, in the order their phases execute.
const (
	KindGiven     StepKind = "given"      // setup action
	KindWhen      StepKind = "when"       // trigger action
	KindThenFails StepKind = "then_fails" // exception check on the trigger failure
	KindThen      StepKind = "then"       // outcome assertion
)

// Valid reports whether k is one of the known step kinds.
func (k StepKind) Valid() bool {
	switch k {
	case KindGiven, KindWhen, KindThenFails, KindThen:
		return true
	default:
		return false
	}
}

// Step is the description of a single step. It carries no behavior.
type Step struct {
	// Kind is the role of the step.
	Kind StepKind `yaml:"kind" json:"kind"`

	// Description is the human-readable step text (e.g., "an empty cart").
	Description string `yaml:"description" json:"description"`
}

// String renders the step the way it reads in a feature file.
func (s Step) String() string {
	switch s.Kind {
	case KindGiven:
		return "Given " + s.Description
	case KindWhen:
		return "When " + s.Description
	case KindThenFails:
		return "Then fails: " + s.Description
	case KindThen:
		return "Then " + s.Description
	default:
		return fmt.Sprintf("%s %s", s.Kind, s.Description)
	}
}

// Scenario identifies what was tested.
// Execution never mutates it; publishers receive it exactly as built.
type Scenario struct {
	// Feature groups related scenarios (may be empty).
	Feature string `yaml:"feature,omitempty" json:"feature,omitempty"`

	// Title names the scenario.
	Title string `yaml:"title" json:"title"`

	// Steps lists step descriptions in declaration order.
	Steps []Step `yaml:"steps" json:"steps"`
}

// Validate checks that the metadata is well formed.
func (s Scenario) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("title is required")
	}
	for i, st := range s.Steps {
		if !st.Kind.Valid() {
			return fmt.Errorf("steps[%d]: unknown kind %q", i, st.Kind)
		}
		if st.Description == "" {
			return fmt.Errorf("steps[%d]: description is required", i)
		}
	}
	return nil
}
