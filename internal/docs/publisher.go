package docs

import (
	"context"

	"github.com/roach88/bddkit/internal/scenario"
)

// Publisher receives the outcome of an executed scenario.
//
// Append is called at most once per executed scenario. Implementations must
// not modify sc and should honor ctx cancellation on a best-effort basis.
// Errors returned by Append reach the caller of Publish unchanged.
type Publisher interface {
	Append(ctx context.Context, sc scenario.Scenario, status TestStatus) error
}

// PublisherFunc adapts an ordinary function to the Publisher interface.
type PublisherFunc func(ctx context.Context, sc scenario.Scenario, status TestStatus) error

// Append calls f(ctx, sc, status).
func (f PublisherFunc) Append(ctx context.Context, sc scenario.Scenario, status TestStatus) error {
	return f(ctx, sc, status)
}

// Record is a published scenario as stored by Journal and Store.
type Record struct {
	ID       string            `json:"id" yaml:"id"`
	Seq      int64             `json:"seq,omitempty" yaml:"seq,omitempty"`
	Scenario scenario.Scenario `json:"scenario" yaml:"scenario"`
	Status   TestStatus        `json:"status" yaml:"status"`
}

// toCanonicalMap converts a Record to a map for canonical JSON serialization.
// Seq is store-local and never part of the canonical form.
func (r Record) toCanonicalMap() map[string]any {
	steps := make([]any, len(r.Scenario.Steps))
	for i, st := range r.Scenario.Steps {
		steps[i] = map[string]any{
			"kind":        string(st.Kind),
			"description": st.Description,
		}
	}
	sc := map[string]any{
		"title": r.Scenario.Title,
		"steps": steps,
	}
	if r.Scenario.Feature != "" {
		sc["feature"] = r.Scenario.Feature
	}
	return map[string]any{
		"id":       r.ID,
		"scenario": sc,
		"status":   r.Status.String(),
	}
}
