// Package store persists trajectories and seed sets under the
// (run, round, seed) addressing scheme the round controller relies on.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adaptivemd/asmd/internal/sim"
	"github.com/adaptivemd/asmd/internal/traj"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	params_json TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trajectories (
	run_id     TEXT NOT NULL,
	round      INTEGER NOT NULL,
	seed_idx   INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	frames     BLOB NOT NULL,
	complete   INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	PRIMARY KEY (run_id, round, seed_idx),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS seed_sets (
	run_id      TEXT NOT NULL,
	round       INTEGER NOT NULL,
	states_json TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (run_id, round),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS round_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	round      INTEGER NOT NULL,
	phase      TEXT NOT NULL,
	detail     TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store manages the per-run trajectory database in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Pin the pool to a single connection: the pragmas below then apply to
	// every statement, and a round's concurrent trajectory writers queue on
	// the pool instead of racing for the write lock.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("pragma busy: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region runs
// EnsureRun registers a run and its parameters; registering the same run
// again is a no-op so resumed runs keep their original record.
func (s *Store) EnsureRun(runID string, paramsJSON string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, params_json, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(run_id) DO NOTHING`,
		runID, paramsJSON, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("ensure run: %w", err)
	}
	return nil
}

// #endregion runs

// #region trajectories
// PutTrajectory stores one trajectory under its (round, seed) key. An
// existing row is replaced, which makes re-running an aborted round safe.
func (s *Store) PutTrajectory(runID string, round, seedIdx int, res sim.Result, complete bool) error {
	var blob []byte
	switch res.Kind {
	case traj.KindDiscrete:
		blob = traj.EncodeDiscrete(res.Discrete)
	case traj.KindVector:
		blob = traj.EncodeVector(res.Vector)
	default:
		return fmt.Errorf("unknown trajectory kind %q", res.Kind)
	}
	completeInt := 0
	if complete {
		completeInt = 1
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO trajectories (run_id, round, seed_idx, kind, frames, complete, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, round, seedIdx, string(res.Kind), blob, completeInt,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put trajectory (%d,%d): %w", round, seedIdx, err)
	}
	return nil
}

// MarkRoundIncomplete flags every trajectory of a round as incomplete so a
// later cumulative load never includes output from an aborted round.
func (s *Store) MarkRoundIncomplete(runID string, round int) error {
	_, err := s.db.Exec(
		`UPDATE trajectories SET complete = 0 WHERE run_id = ? AND round = ?`,
		runID, round,
	)
	if err != nil {
		return fmt.Errorf("mark round %d incomplete: %w", round, err)
	}
	return nil
}

// CompleteCount returns how many complete trajectories a round holds.
func (s *Store) CompleteCount(runID string, round int) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM trajectories WHERE run_id = ? AND round = ? AND complete = 1`,
		runID, round,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count round %d: %w", round, err)
	}
	return n, nil
}

// LoadDiscrete returns every complete discrete trajectory from rounds
// 0..throughRound inclusive, ordered by (round, seed).
func (s *Store) LoadDiscrete(runID string, throughRound int) ([]traj.Discrete, error) {
	rows, err := s.queryFrames(runID, throughRound, traj.KindDiscrete)
	if err != nil {
		return nil, err
	}
	out := make([]traj.Discrete, len(rows))
	for i, blob := range rows {
		t, err := traj.DecodeDiscrete(blob)
		if err != nil {
			return nil, fmt.Errorf("decode trajectory: %w", err)
		}
		out[i] = t
	}
	return out, nil
}

// LoadVector returns every complete vector trajectory from rounds
// 0..throughRound inclusive, ordered by (round, seed).
func (s *Store) LoadVector(runID string, throughRound int) ([]traj.Vector, error) {
	rows, err := s.queryFrames(runID, throughRound, traj.KindVector)
	if err != nil {
		return nil, err
	}
	out := make([]traj.Vector, len(rows))
	for i, blob := range rows {
		t, err := traj.DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode trajectory: %w", err)
		}
		out[i] = t
	}
	return out, nil
}

func (s *Store) queryFrames(runID string, throughRound int, kind traj.Kind) ([][]byte, error) {
	rows, err := s.db.Query(
		`SELECT frames FROM trajectories
		 WHERE run_id = ? AND round <= ? AND kind = ? AND complete = 1
		 ORDER BY round, seed_idx`,
		runID, throughRound, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query trajectories: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		out = append(out, blob)
	}
	return out, rows.Err()
}

// #endregion trajectories

// #region seed-sets
// PutSeedSet stores the seed set for a round, replacing any previous one.
// Re-running the adapt step after a crash overwrites with identical data.
func (s *Store) PutSeedSet(runID string, round int, seeds []sim.Seed) error {
	statesJSON, err := json.Marshal(seeds)
	if err != nil {
		return fmt.Errorf("marshal seed set: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO seed_sets (run_id, round, states_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		runID, round, string(statesJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put seed set round %d: %w", round, err)
	}
	return nil
}

// GetSeedSet loads the seed set for a round; ok=false when none exists.
func (s *Store) GetSeedSet(runID string, round int) ([]sim.Seed, bool, error) {
	var statesJSON string
	err := s.db.QueryRow(
		`SELECT states_json FROM seed_sets WHERE run_id = ? AND round = ?`,
		runID, round,
	).Scan(&statesJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get seed set round %d: %w", round, err)
	}
	var seeds []sim.Seed
	if err := json.Unmarshal([]byte(statesJSON), &seeds); err != nil {
		return nil, false, fmt.Errorf("unmarshal seed set: %w", err)
	}
	return seeds, true, nil
}

// LastSeededRound returns the highest round with a persisted seed set, or
// -1 when the run has none.
func (s *Store) LastSeededRound(runID string) (int, error) {
	var round sql.NullInt64
	err := s.db.QueryRow(
		`SELECT MAX(round) FROM seed_sets WHERE run_id = ?`, runID,
	).Scan(&round)
	if err != nil {
		return -1, fmt.Errorf("last seeded round: %w", err)
	}
	if !round.Valid {
		return -1, nil
	}
	return int(round.Int64), nil
}

// #endregion seed-sets
