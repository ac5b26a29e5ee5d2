package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/adaptivemd/asmd/internal/adapt"
	"github.com/adaptivemd/asmd/internal/config"
	"github.com/adaptivemd/asmd/internal/param"
	"github.com/adaptivemd/asmd/internal/run"
	"github.com/adaptivemd/asmd/internal/store"
)

// #region command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute an adaptive-sampling run",
	Long: `Run rounds of seed → simulate → model → adapt until the configured
convergence rule fires or max_rounds is reached. A pre-existing run
namespace is resumed, not overwritten.

Examples:
  asmd run -c run.yaml
  ASMD_CONFIG=run.yaml asmd run`,
	RunE: runRun,
}

var runCfgPath string

func init() {
	runCmd.Flags().StringVarP(&runCfgPath, "config", "c", "", "run configuration file (default $ASMD_CONFIG or asmd.yaml)")
	rootCmd.AddCommand(runCmd)
}

// #endregion command

// #region run
func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath(runCfgPath))
	if err != nil {
		return err
	}

	p, err := param.New(cfg.SPT, cfg.TPR, cfg.LagTime, cfg.RunID)
	if err != nil {
		return err
	}
	p.MaxRounds = cfg.MaxRounds
	p.Workers = cfg.Workers

	layout := param.NewLayout(cfg.BaseDir, p.RunID)
	if _, err := layout.Ensure(); err != nil {
		return err
	}

	st, err := store.NewStore(layout.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	// A run that already has seed sets picks up at its last seeded round.
	last, err := st.LastSeededRound(p.RunID)
	if err != nil {
		return err
	}
	if last > 0 {
		if err := p.SetRound(last); err != nil {
			return err
		}
		log.Printf("[CTRL] resuming run %s at round %d", p.RunID, last)
	}

	simulator, closer, err := buildSimulator(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	ctrl := &run.Controller{
		Params:       p,
		Layout:       layout,
		Store:        st,
		Sim:          simulator,
		Modeller:     buildModeller(simulator.Kind(), cfg.Simulator.Seed),
		Adapter:      &adapt.SortCountsAdapter{},
		Converged:    buildPredicate(cfg.Convergence),
		InitialSeeds: buildSeedSource(cfg.Simulator, simulator.Kind()),
	}

	log.Printf("[CTRL] starting run %s (%s)", p.RunID, p.Desc())
	terminal, err := ctrl.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run %s: %w", p.RunID, err)
	}
	fmt.Printf("run %s finished: %s at round %d\n", p.RunID, terminal, p.Round())
	return nil
}

func configPath(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return envOr("ASMD_CONFIG", "asmd.yaml")
}

// #endregion run
