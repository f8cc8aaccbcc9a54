package simulation

import (
	"sort"

	"github.com/dd0wney/bgpsim/pkg/scenario"
)

// Key identifies one cell of the cross-trial statistics.
type Key struct {
	Policy          string
	AdoptionPercent float64
	Outcome         scenario.Outcome
}

// Aggregate folds per-trial classifications into AS counts keyed by (policy
// variant, adoption percent, outcome). Counts are commutative, so the merge
// order of concurrently finishing trials cannot change the result.
type Aggregate struct {
	RunID string

	counts map[Key]int64
	trials map[cellKey]int64
}

type cellKey struct {
	policy  string
	percent float64
}

// NewAggregate creates an empty aggregate for the given run.
func NewAggregate(runID string) *Aggregate {
	return &Aggregate{
		RunID:  runID,
		counts: make(map[Key]int64),
		trials: make(map[cellKey]int64),
	}
}

// Add folds one trial's result into the aggregate.
func (a *Aggregate) Add(policy string, percent float64, res *scenario.Result) {
	for outcome, n := range res.Tally {
		a.counts[Key{Policy: policy, AdoptionPercent: percent, Outcome: outcome}] += int64(n)
	}
	a.trials[cellKey{policy: policy, percent: percent}]++
}

// Merge folds another aggregate in; used to combine per-worker partials.
func (a *Aggregate) Merge(other *Aggregate) {
	for k, n := range other.counts {
		a.counts[k] += n
	}
	for k, n := range other.trials {
		a.trials[k] += n
	}
}

// Count returns the classified-AS total for one cell.
func (a *Aggregate) Count(k Key) int64 {
	return a.counts[k]
}

// Trials returns how many trials fed the given (policy, percent) cell.
func (a *Aggregate) Trials(policy string, percent float64) int64 {
	return a.trials[cellKey{policy: policy, percent: percent}]
}

// Fraction returns the share of classified ASes with the given outcome
// within one (policy, percent) cell, 0 for an empty cell.
func (a *Aggregate) Fraction(policy string, percent float64, outcome scenario.Outcome) float64 {
	var total, hit int64
	for _, o := range scenario.Outcomes {
		n := a.counts[Key{Policy: policy, AdoptionPercent: percent, Outcome: o}]
		total += n
		if o == outcome {
			hit = n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}

// Keys returns all populated cells in a stable order for reporting.
func (a *Aggregate) Keys() []Key {
	keys := make([]Key, 0, len(a.counts))
	for k := range a.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Policy != keys[j].Policy {
			return keys[i].Policy < keys[j].Policy
		}
		if keys[i].AdoptionPercent != keys[j].AdoptionPercent {
			return keys[i].AdoptionPercent < keys[j].AdoptionPercent
		}
		return keys[i].Outcome < keys[j].Outcome
	})
	return keys
}
