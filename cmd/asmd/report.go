package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adaptivemd/asmd/internal/config"
	"github.com/adaptivemd/asmd/internal/model"
	"github.com/adaptivemd/asmd/internal/param"
	"github.com/adaptivemd/asmd/internal/report"
	"github.com/adaptivemd/asmd/internal/store"
	"github.com/adaptivemd/asmd/internal/traj"
)

// #region command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render per-round model summaries into the figures namespace",
	RunE:  runReport,
}

var reportCfgPath string

func init() {
	reportCmd.Flags().StringVarP(&reportCfgPath, "config", "c", "", "run configuration file (default $ASMD_CONFIG or asmd.yaml)")
	rootCmd.AddCommand(reportCmd)
}

// #endregion command

// #region report
func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath(reportCfgPath))
	if err != nil {
		return err
	}
	if cfg.RunID == "" {
		return fmt.Errorf("report requires run_id in the config")
	}

	p, err := param.New(cfg.SPT, cfg.TPR, cfg.LagTime, cfg.RunID)
	if err != nil {
		return err
	}

	layout := param.NewLayout(cfg.BaseDir, cfg.RunID)
	st, err := store.NewStore(layout.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	kind := traj.KindDiscrete
	if cfg.Simulator.Type == "walker" || cfg.Simulator.Kind == "vector" {
		kind = traj.KindVector
	}

	gen := &report.Generator{
		Store:       st,
		Layout:      layout,
		Params:      p,
		Kind:        kind,
		NewModeller: func() model.Modeller { return buildModeller(kind, cfg.Simulator.Seed) },
	}

	through, err := lastSimulatedRound(st, cfg.RunID)
	if err != nil {
		return err
	}
	if through < 0 {
		return fmt.Errorf("run %s has no complete trajectories", cfg.RunID)
	}
	if err := gen.Generate(through); err != nil {
		return err
	}
	fmt.Printf("wrote reports for rounds 0..%d under %s\n", through, layout.FigDir)
	return nil
}

// lastSimulatedRound finds the highest round with a full set of complete
// trajectories.
func lastSimulatedRound(st *store.Store, runID string) (int, error) {
	last := -1
	for round := 0; ; round++ {
		n, err := st.CompleteCount(runID, round)
		if err != nil {
			return -1, err
		}
		if n == 0 {
			return last, nil
		}
		last = round
	}
}

// #endregion report
