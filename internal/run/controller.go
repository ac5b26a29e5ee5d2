// Package run orchestrates the adaptive-sampling cycle: seed, simulate,
// model, adapt, repeat.
package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/adaptivemd/asmd/internal/adapt"
	"github.com/adaptivemd/asmd/internal/logging"
	"github.com/adaptivemd/asmd/internal/model"
	"github.com/adaptivemd/asmd/internal/param"
	"github.com/adaptivemd/asmd/internal/sim"
	"github.com/adaptivemd/asmd/internal/store"
	"github.com/adaptivemd/asmd/internal/traj"
)

// #region phases
// Phase is a state of the round lifecycle.
type Phase string

const (
	PhaseInit      Phase = "init"
	PhaseSeeded    Phase = "seeded"
	PhaseSimulated Phase = "simulated"
	PhaseModeled   Phase = "modeled"
	PhaseAdapted   Phase = "adapted"

	// Terminal phases; no transition leaves them.
	PhaseConverged  Phase = "converged"
	PhaseRoundLimit Phase = "round_limit"
)

// #endregion phases

// #region errors
// ErrSimulationIncomplete is returned when a round ends with fewer
// trajectories than seeds. The round is aborted; retry policy belongs to
// the simulator, not the controller.
var ErrSimulationIncomplete = errors.New("simulation incomplete")

// #endregion errors

// #region collaborators
// ConvergencePredicate decides, from a built model's public summary,
// whether the run has converged.
type ConvergencePredicate func(model.Summary) bool

// SeedSource supplies round 0's seeds; later rounds are seeded by the
// adapter.
type SeedSource func(tpr int) []sim.Seed

// #endregion collaborators

// #region controller
// Controller drives the sequential round pipeline. Within a round the
// seeds are simulated concurrently; rounds never overlap because the model
// is cumulative over all prior rounds.
type Controller struct {
	Params       *param.Params
	Layout       param.Layout
	Store        *store.Store
	Sim          sim.Simulator
	Modeller     model.Modeller
	Adapter      adapt.Adapter
	Converged    ConvergencePredicate
	InitialSeeds SeedSource
	Logger       *log.Logger

	phase Phase
}

// Phase returns the controller's current lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// #endregion controller

// #region run
// Run executes rounds until the convergence predicate fires, the round
// limit is reached, or an error surfaces. It returns the terminal phase.
func (c *Controller) Run(ctx context.Context) (Phase, error) {
	p := c.Params
	c.phase = PhaseInit

	resumed, err := c.Layout.Ensure()
	if err != nil {
		return c.phase, fmt.Errorf("ensure layout: %w", err)
	}
	if resumed {
		c.logger().Printf("[CTRL] namespace %s already exists, resuming", c.Layout.RunDir)
	}

	paramsJSON, err := json.Marshal(map[string]int{
		"spt": p.SPT, "tpr": p.TPR, "lag_time": p.LagTime, "max_rounds": p.MaxRounds,
	})
	if err != nil {
		return c.phase, fmt.Errorf("marshal params: %w", err)
	}
	if err := c.Store.EnsureRun(p.RunID, string(paramsJSON)); err != nil {
		return c.phase, err
	}
	c.logEvent(p.Round(), string(PhaseInit), p.Desc())

	seeds, err := c.startingSeeds()
	if err != nil {
		return c.phase, err
	}

	for {
		round := p.Round()

		// The limit is checked before the round starts, so a resumed run
		// whose pointer already sits at MaxRounds stays terminal instead
		// of executing an extra round.
		if p.MaxRounds > 0 && round >= p.MaxRounds {
			c.phase = PhaseRoundLimit
			c.logEvent(round, string(PhaseRoundLimit), "")
			return PhaseRoundLimit, nil
		}

		// Persist the round's seed set before anything else so a crash
		// never loses the seeds the round runs from.
		if err := c.Store.PutSeedSet(p.RunID, round, seeds); err != nil {
			return c.phase, err
		}
		c.phase = PhaseSeeded
		c.logEvent(round, string(PhaseSeeded), fmt.Sprintf("%d seeds", len(seeds)))

		if err := c.simulateRound(ctx, round, seeds); err != nil {
			c.logEvent(round, "aborted", err.Error())
			return c.phase, err
		}
		c.phase = PhaseSimulated
		c.logEvent(round, string(PhaseSimulated), "")

		ts, err := c.loadCumulative(round)
		if err != nil {
			return c.phase, err
		}
		if err := c.Modeller.Model(ts, p.LagTime); err != nil {
			// A round that cannot produce a valid model must not proceed
			// to adaptation with stale data.
			c.logEvent(round, "aborted", err.Error())
			return c.phase, fmt.Errorf("model round %d: %w", round, err)
		}
		c.phase = PhaseModeled
		c.logEvent(round, string(PhaseModeled), "")

		summary, err := model.Summarize(c.Modeller, round)
		if err != nil {
			return c.phase, err
		}
		if err := c.cacheSummary(summary); err != nil {
			c.logger().Printf("[CTRL] cache model summary round %d: %v", round, err)
		}
		c.logger().Printf("[CTRL] round %d: %d states, %d found, %d total counts",
			round, summary.NStates, summary.FoundStates, summary.TotalCounts)

		if c.Converged != nil && c.Converged(summary) {
			c.phase = PhaseConverged
			c.logEvent(round, string(PhaseConverged), "")
			return PhaseConverged, nil
		}

		states, err := c.Adapter.Select(c.Modeller, p.TPR)
		if err != nil {
			return c.phase, fmt.Errorf("adapt round %d: %w", round, err)
		}
		if len(states) == 0 {
			return c.phase, fmt.Errorf("adapt round %d: no candidate states", round)
		}
		next := c.seedsFor(states)

		// Next round's seeds are persisted before the pointer advances, so
		// redoing adaptation after a crash is safe and lossless.
		if err := c.Store.PutSeedSet(p.RunID, round+1, next); err != nil {
			return c.phase, err
		}
		c.phase = PhaseAdapted
		c.logEvent(round, string(PhaseAdapted), fmt.Sprintf("%d next seeds", len(next)))

		p.AdvanceRound()
		seeds = next
	}
}

// #endregion run

// #region seeding
// startingSeeds restores the current round's persisted seed set, or asks
// the initial-condition source when round 0 has never been seeded.
func (c *Controller) startingSeeds() ([]sim.Seed, error) {
	p := c.Params
	seeds, ok, err := c.Store.GetSeedSet(p.RunID, p.Round())
	if err != nil {
		return nil, err
	}
	if ok {
		return seeds, nil
	}
	if p.Round() != 0 {
		return nil, fmt.Errorf("no seed set persisted for round %d", p.Round())
	}
	if c.InitialSeeds == nil {
		return nil, fmt.Errorf("no initial seed source configured")
	}
	return c.InitialSeeds(p.TPR), nil
}

// seedsFor translates selected state indices into simulator seeds,
// attaching centroid structures when the modeller's states live in a
// continuous space.
func (c *Controller) seedsFor(states []int) []sim.Seed {
	cs, hasCentroids := c.Modeller.(model.CentroidSource)
	seeds := make([]sim.Seed, len(states))
	for i, s := range states {
		seeds[i] = sim.Seed{State: s}
		if hasCentroids {
			seeds[i].Point = append([]float64(nil), cs.Centroid(s)...)
		}
	}
	return seeds
}

// #endregion seeding

// #region simulate-round
// simulateRound fans the round's seeds out to a bounded worker pool and
// joins before returning. Any failure aborts the round: completed sibling
// trajectories are flagged incomplete so cumulative loads skip them.
func (c *Controller) simulateRound(ctx context.Context, round int, seeds []sim.Seed) error {
	p := c.Params
	workers := p.Workers
	if workers <= 0 || workers > len(seeds) {
		workers = len(seeds)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	errs := make([]error, len(seeds))

	for i, sd := range seeds {
		wg.Add(1)
		go func(i int, sd sim.Seed) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := c.Sim.Simulate(ctx, sd, p.SPT)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = c.Store.PutTrajectory(p.RunID, round, i, res, true)
		}(i, sd)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			if markErr := c.Store.MarkRoundIncomplete(p.RunID, round); markErr != nil {
				c.logger().Printf("[CTRL] mark round %d incomplete: %v", round, markErr)
			}
			return fmt.Errorf("%w: seed %d: %v", ErrSimulationIncomplete, i, err)
		}
	}

	n, err := c.Store.CompleteCount(p.RunID, round)
	if err != nil {
		return err
	}
	if n != len(seeds) {
		return fmt.Errorf("%w: %d of %d trajectories stored", ErrSimulationIncomplete, n, len(seeds))
	}
	return nil
}

// #endregion simulate-round

// #region cumulative-load
// loadCumulative gathers every complete trajectory from rounds 0..round in
// the representation the simulator produces.
func (c *Controller) loadCumulative(round int) (model.Trajectories, error) {
	var ts model.Trajectories
	switch c.Sim.Kind() {
	case traj.KindDiscrete:
		trajs, err := c.Store.LoadDiscrete(c.Params.RunID, round)
		if err != nil {
			return ts, err
		}
		ts.Discrete = trajs
	case traj.KindVector:
		trajs, err := c.Store.LoadVector(c.Params.RunID, round)
		if err != nil {
			return ts, err
		}
		ts.Vector = trajs
	default:
		return ts, fmt.Errorf("unknown trajectory kind %q", c.Sim.Kind())
	}
	return ts, nil
}

// #endregion cumulative-load

// #region bookkeeping
func (c *Controller) cacheSummary(s model.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Layout.ModelPath(s.Round), data, 0o644)
}

func (c *Controller) logEvent(round int, phase, detail string) {
	err := logging.LogRound(c.Store.DB(), logging.RoundEvent{
		RunID:  c.Params.RunID,
		Round:  round,
		Phase:  phase,
		Detail: detail,
	})
	if err != nil {
		c.logger().Printf("[CTRL] round log: %v", err)
	}
}

// #endregion bookkeeping
