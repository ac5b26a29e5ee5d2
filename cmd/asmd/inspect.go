package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adaptivemd/asmd/internal/config"
	"github.com/adaptivemd/asmd/internal/logging"
	"github.com/adaptivemd/asmd/internal/param"
	"github.com/adaptivemd/asmd/internal/store"
)

// #region command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump the round history and seed sets of a run",
	RunE:  runInspect,
}

var inspectCfgPath string

func init() {
	inspectCmd.Flags().StringVarP(&inspectCfgPath, "config", "c", "", "run configuration file (default $ASMD_CONFIG or asmd.yaml)")
	rootCmd.AddCommand(inspectCmd)
}

// #endregion command

// #region inspect
func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath(inspectCfgPath))
	if err != nil {
		return err
	}
	if cfg.RunID == "" {
		return fmt.Errorf("inspect requires run_id in the config")
	}

	layout := param.NewLayout(cfg.BaseDir, cfg.RunID)
	st, err := store.NewStore(layout.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := logging.ListRounds(st.DB(), cfg.RunID)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %d events\n", cfg.RunID, len(events))
	for _, e := range events {
		detail := ""
		if e.Detail != "" {
			detail = "  " + e.Detail
		}
		fmt.Printf("  round %-3d %-12s%s\n", e.Round, e.Phase, detail)
	}

	last, err := st.LastSeededRound(cfg.RunID)
	if err != nil {
		return err
	}
	for round := 0; round <= last; round++ {
		seeds, ok, err := st.GetSeedSet(cfg.RunID, round)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		states := make([]int, len(seeds))
		for i, s := range seeds {
			states[i] = s.State
		}
		n, err := st.CompleteCount(cfg.RunID, round)
		if err != nil {
			return err
		}
		fmt.Printf("  round %-3d seeds=%v trajectories=%d\n", round, states, n)
	}
	return nil
}

// #endregion inspect
