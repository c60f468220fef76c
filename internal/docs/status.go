package docs

import "fmt"

// TestStatus is the pass/fail status published for a scenario.
type TestStatus int

const (
	// StatusPassed means the run was classified as passed. A trigger failure
	// accepted by every exception check still counts as passed.
	StatusPassed TestStatus = iota
	// StatusFailed means the run was classified into any other category.
	StatusFailed
)

// String returns the lowercase status name.
func (s TestStatus) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Valid reports whether s is StatusPassed or StatusFailed.
func (s TestStatus) Valid() bool {
	return s == StatusPassed || s == StatusFailed
}

// ParseStatus parses "passed" or "failed".
func ParseStatus(s string) (TestStatus, error) {
	switch s {
	case "passed":
		return StatusPassed, nil
	case "failed":
		return StatusFailed, nil
	default:
		return 0, fmt.Errorf("unknown test status %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s TestStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal test status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TestStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
