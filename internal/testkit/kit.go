// Package testkit provides fixtures and in-memory fakes shared by tests.
package testkit

import (
	"context"
	"sort"
	"sync"

	"powersim/domain/core"
	"powersim/domain/design"
	"powersim/domain/power"
	"powersim/ports"
)

// InMemoryCurveRepository is a map-backed ports.CurveRepository for tests
// and for running the API without a database.
type InMemoryCurveRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]power.Run
}

// NewInMemoryCurveRepository creates an empty repository
func NewInMemoryCurveRepository() *InMemoryCurveRepository {
	return &InMemoryCurveRepository{runs: make(map[core.RunID]power.Run)}
}

// Save implements ports.CurveRepository
func (r *InMemoryCurveRepository) Save(_ context.Context, run power.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

// Get implements ports.CurveRepository
func (r *InMemoryCurveRepository) Get(_ context.Context, id core.RunID) (power.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return power.Run{}, core.ErrRunNotFound
	}
	return run, nil
}

// List implements ports.CurveRepository
func (r *InMemoryCurveRepository) List(_ context.Context) ([]power.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]power.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ ports.CurveRepository = (*InMemoryCurveRepository)(nil)

// PilotObservations is a small within-subject pilot table: four subjects,
// two conditions, three trials each, with visibly correlated subject levels.
func PilotObservations() []design.Observation {
	var obs []design.Observation
	subjectLevels := []struct {
		congruent   []float64
		incongruent []float64
	}{
		{[]float64{510, 495, 505}, []float64{585, 600, 592}},
		{[]float64{450, 462, 441}, []float64{530, 516, 522}},
		{[]float64{610, 598, 605}, []float64{702, 688, 694}},
		{[]float64{540, 528, 533}, []float64{615, 627, 620}},
	}
	for i, s := range subjectLevels {
		for _, v := range s.congruent {
			obs = append(obs, design.Observation{Subject: i + 1, Condition: "congruent", Value: v})
		}
		for _, v := range s.incongruent {
			obs = append(obs, design.Observation{Subject: i + 1, Condition: "incongruent", Value: v})
		}
	}
	return obs
}
