package main

import (
	"os"

	"github.com/spf13/cobra"
)

// #region root
var rootCmd = &cobra.Command{
	Use:   "asmd",
	Short: "Adaptive-sampling controller for trajectory simulations",
	Long: `asmd alternates short simulation rounds with transition-model builds,
starting each new round from the least-sampled states of the model so the
state space is covered faster than uniform or single-long-trajectory
sampling.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion root

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
