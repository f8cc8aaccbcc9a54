// Package simulation orchestrates batches of independent hijack trials over
// a fixed-size worker pool and folds their classifications into cross-trial
// statistics.
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/engine"
	"github.com/dd0wney/bgpsim/pkg/logging"
	"github.com/dd0wney/bgpsim/pkg/metrics"
	"github.com/dd0wney/bgpsim/pkg/policy"
	"github.com/dd0wney/bgpsim/pkg/rpki"
	"github.com/dd0wney/bgpsim/pkg/scenario"
)

// PolicyFactory builds the defense policy over a worker's registries. It is
// called once per worker; the registries are then refilled per trial with
// that trial's records.
type PolicyFactory func(deps policy.Deps) (policy.Policy, error)

// FactoryFromSpec adapts a configuration policy name to a PolicyFactory.
func FactoryFromSpec(spec string) PolicyFactory {
	return func(deps policy.Deps) (policy.Policy, error) {
		return policy.FromSpec(spec, deps)
	}
}

// Orchestrator runs trials in parallel. Each worker owns one engine.State
// overlay of the shared graph plus its own registry set, so the trial hot
// path takes no locks; the only synchronization is the final merge of
// per-worker aggregates.
type Orchestrator struct {
	graph   *asgraph.Graph
	gen     *scenario.Generator
	base    policy.Policy
	factory PolicyFactory

	workers int
	seed    int64
	log     logging.Logger
	metrics *metrics.Registry

	completed atomic.Int64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the worker count; defaults to the number of CPUs.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// WithSeed fixes the base random seed. Trial i always draws from a source
// seeded seed+i, so runs replay exactly regardless of worker scheduling.
func WithSeed(seed int64) Option {
	return func(o *Orchestrator) { o.seed = seed }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(log logging.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithMetrics attaches a metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(o *Orchestrator) { o.metrics = reg }
}

// New creates an orchestrator. The base policy runs on every AS that did not
// adopt; the factory builds the defense the adopter subset runs.
func New(graph *asgraph.Graph, gen *scenario.Generator, base policy.Policy, factory PolicyFactory, opts ...Option) (*Orchestrator, error) {
	if graph == nil || gen == nil {
		return nil, fmt.Errorf("simulation: graph and generator are required")
	}
	if base == nil || factory == nil {
		return nil, fmt.Errorf("simulation: base policy and defense factory are required")
	}
	o := &Orchestrator{
		graph:   graph,
		gen:     gen,
		base:    base,
		factory: factory,
		workers: runtime.NumCPU(),
		log:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers <= 0 {
		o.workers = 1
	}
	if o.metrics != nil {
		o.metrics.SetGraphInfo(graph.Len(), len(graph.Ranks()))
	}
	return o, nil
}

// Completed returns the monotonically increasing count of finished trials
// across all Run and Sweep calls.
func (o *Orchestrator) Completed() int64 {
	return o.completed.Load()
}

// Run executes trialCount independent trials at one adoption percentage and
// returns the aggregate. Any engine failure aborts the batch and discards
// all partial results. Cancelling the context stops submission of new
// trials; in-flight trials finish, and the partial result is discarded with
// the context error.
func (o *Orchestrator) Run(ctx context.Context, trialCount int, adoptionPercent float64) (*Aggregate, error) {
	agg := NewAggregate(uuid.NewString())
	if err := o.run(ctx, trialCount, adoptionPercent, o.seed, agg); err != nil {
		return nil, err
	}
	return agg, nil
}

// Sweep runs trialCount trials at each adoption percentage and returns one
// combined aggregate with a cell per percentage.
func (o *Orchestrator) Sweep(ctx context.Context, trialCount int, adoptionPercents []float64) (*Aggregate, error) {
	agg := NewAggregate(uuid.NewString())
	for i, percent := range adoptionPercents {
		// Offset the seed per sweep step so steps draw independent trials.
		seedBase := o.seed + int64(i)*int64(trialCount)
		if err := o.run(ctx, trialCount, percent, seedBase, agg); err != nil {
			return nil, err
		}
	}
	return agg, nil
}

func (o *Orchestrator) run(ctx context.Context, trialCount int, adoptionPercent float64, seedBase int64, agg *Aggregate) error {
	if trialCount <= 0 {
		return fmt.Errorf("simulation: trial count must be positive, got %d", trialCount)
	}

	started := time.Now()
	o.log.Info("starting batch",
		logging.RunID(agg.RunID),
		logging.AdoptionPercent(adoptionPercent),
		logging.Count("trials", trialCount),
		logging.Count("workers", o.workers))

	var (
		next     atomic.Int64
		failed   atomic.Bool
		firstErr error
		errOnce  sync.Once
		mu       sync.Mutex
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		failed.Store(true)
	}

	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if o.metrics != nil {
				o.metrics.WorkersActive.Inc()
				defer o.metrics.WorkersActive.Dec()
			}

			deps := policy.Deps{
				Validator: rpki.NewValidator(),
				ASPA:      rpki.NewASPARegistry(),
				PathEnd:   rpki.NewPathEndRegistry(),
				Tier1:     o.graph.Tier1(),
			}
			defense, err := o.factory(deps)
			if err != nil {
				fail(fmt.Errorf("simulation: building defense policy: %w", err))
				return
			}

			st := engine.NewState(o.graph)
			local := NewAggregate(agg.RunID)
			for {
				idx := int(next.Add(1) - 1)
				if idx >= trialCount || failed.Load() || ctx.Err() != nil {
					break
				}
				if err := o.runTrial(st, deps, defense, idx, seedBase, adoptionPercent, local); err != nil {
					fail(err)
					break
				}
				o.completed.Add(1)
			}

			mu.Lock()
			agg.Merge(local)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	o.log.Info("batch complete",
		logging.RunID(agg.RunID),
		logging.AdoptionPercent(adoptionPercent),
		logging.Elapsed(time.Since(started)))
	return nil
}

// runTrial executes one trial on the worker's state overlay. A panic in the
// engine is converted to an engine failure so one broken trial cannot take
// the process down while still aborting the batch.
func (o *Orchestrator) runTrial(st *engine.State, deps policy.Deps, defense policy.Policy, idx int, seedBase int64, adoptionPercent float64, local *Aggregate) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EngineFailureError{Trial: idx, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	started := time.Now()
	rng := rand.New(rand.NewSource(seedBase + int64(idx)))

	sc, err := o.gen.Draw(rng, adoptionPercent)
	if err != nil {
		return &EngineFailureError{Trial: idx, Err: err}
	}

	st.Reset()
	deps.Reset()
	sc.Setup(o.graph, deps)
	sc.Apply(st, o.base, defense)
	if err := sc.Seed(st); err != nil {
		return &EngineFailureError{Trial: idx, Err: err}
	}
	if err := st.Run(); err != nil {
		if o.metrics != nil {
			o.metrics.RecordTrial(sc.Kind.String(), "failed", time.Since(started))
		}
		o.log.Error("trial failed",
			logging.Trial(idx),
			logging.Scenario(sc.Kind.String()),
			logging.Error(err))
		return &EngineFailureError{Trial: idx, Err: err}
	}

	res := scenario.Classify(st, sc)
	local.Add(defense.Name(), adoptionPercent, res)

	if o.metrics != nil {
		stats := st.Stats()
		o.metrics.RecordTrial(sc.Kind.String(), "completed", time.Since(started))
		o.metrics.RecordAnnouncements(stats.Accepted, stats.Rejected)
		for outcome, n := range res.Tally {
			o.metrics.RecordOutcome(sc.Kind.String(), defense.Name(), outcome.String(), n)
		}
	}
	return nil
}
