package main

import (
	"fmt"
	"io"

	"github.com/adaptivemd/asmd/internal/config"
	"github.com/adaptivemd/asmd/internal/model"
	"github.com/adaptivemd/asmd/internal/remote"
	"github.com/adaptivemd/asmd/internal/run"
	"github.com/adaptivemd/asmd/internal/sim"
	"github.com/adaptivemd/asmd/internal/traj"
)

// #region simulator
// buildSimulator constructs the configured trajectory source. The returned
// closer is nil for in-process simulators.
func buildSimulator(cfg *config.Config) (sim.Simulator, io.Closer, error) {
	sc := cfg.Simulator
	switch sc.Type {
	case "tmat":
		s, err := sim.NewTMatSimulator(sc.Matrix, sc.Seed)
		if err != nil {
			return nil, nil, fmt.Errorf("tmat simulator: %w", err)
		}
		return s, nil, nil
	case "walker":
		return sim.NewWalkerSimulator(sc.Seed), nil, nil
	case "remote":
		kind := traj.KindDiscrete
		if sc.Kind == "vector" {
			kind = traj.KindVector
		}
		c, err := remote.Dial(sc.URL, kind)
		if err != nil {
			return nil, nil, fmt.Errorf("remote simulator: %w", err)
		}
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown simulator type %q", sc.Type)
	}
}

// #endregion simulator

// #region modeller
// buildModeller picks the modeller matching the simulator's frame
// representation.
func buildModeller(kind traj.Kind, clusterSeed int64) model.Modeller {
	if kind == traj.KindVector {
		return model.NewClusterModeller(clusterSeed)
	}
	return model.NewTMatModeller()
}

// #endregion modeller

// #region convergence
// buildPredicate translates the config's stopping rule, nil when none set.
func buildPredicate(cc config.ConvergenceConfig) run.ConvergencePredicate {
	switch {
	case cc.MinCountPerState > 0:
		return run.MinCountPerState(cc.MinCountPerState)
	case cc.MinTotalCounts > 0:
		return run.MinTotalCounts(cc.MinTotalCounts)
	case cc.AllStatesFound > 0:
		return run.AllStatesFound(cc.AllStatesFound)
	default:
		return nil
	}
}

// #endregion convergence

// #region seed-source
// buildSeedSource supplies round 0's seeds from the configured initial
// conditions, cycling them when fewer than tpr are given.
func buildSeedSource(sc config.SimulatorConfig, kind traj.Kind) run.SeedSource {
	return func(tpr int) []sim.Seed {
		seeds := make([]sim.Seed, tpr)
		for i := range seeds {
			if kind == traj.KindDiscrete {
				if len(sc.InitialStates) > 0 {
					seeds[i].State = sc.InitialStates[i%len(sc.InitialStates)]
				}
			} else if len(sc.InitialPoints) > 0 {
				seeds[i].Point = append([]float64(nil), sc.InitialPoints[i%len(sc.InitialPoints)]...)
			}
		}
		return seeds
	}
}

// #endregion seed-source
