package param

import (
	"fmt"
	"os"
	"path/filepath"
)

// #region layout-names
const (
	trajDirName   = "trajs"
	sstateDirName = "sstates"
	msmDirName    = "msms"
	figDirName    = "figs"
)

// #endregion layout-names

// #region layout-struct
// Layout is the on-disk namespace for one run: sub-directories for
// trajectories, seed states, cached models, and figures, each keyed by
// round index.
type Layout struct {
	RunDir    string
	TrajDir   string
	SStateDir string
	MSMDir    string
	FigDir    string
}

// NewLayout derives the directory layout for a run rooted at baseDir.
func NewLayout(baseDir, runID string) Layout {
	runDir := filepath.Join(baseDir, runID)
	return Layout{
		RunDir:    runDir,
		TrajDir:   filepath.Join(runDir, trajDirName),
		SStateDir: filepath.Join(runDir, sstateDirName),
		MSMDir:    filepath.Join(runDir, msmDirName),
		FigDir:    filepath.Join(runDir, figDirName),
	}
}

// #endregion layout-struct

// #region ensure
// Ensure creates the run namespace. A pre-existing namespace is not an
// error: the run is treated as resuming and resumed=true is returned so the
// caller can log it.
func (l Layout) Ensure() (resumed bool, err error) {
	if _, statErr := os.Stat(l.RunDir); statErr == nil {
		resumed = true
	}
	for _, dir := range []string{l.RunDir, l.TrajDir, l.SStateDir, l.MSMDir, l.FigDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return resumed, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return resumed, nil
}

// #endregion ensure

// #region round-keys
// DBPath is the SQLite database file for the run's trajectory store.
func (l Layout) DBPath() string {
	return filepath.Join(l.RunDir, "run.db")
}

// ModelPath is the cached model summary file for a round.
func (l Layout) ModelPath(round int) string {
	return filepath.Join(l.MSMDir, fmt.Sprintf("round-%d.json", round))
}

// ReportPath is the per-round report file in the figures namespace.
func (l Layout) ReportPath(round int) string {
	return filepath.Join(l.FigDir, fmt.Sprintf("plot-%d.txt", round))
}

// #endregion round-keys
