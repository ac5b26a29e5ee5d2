// Package logging records the round lifecycle into the run database so a
// completed run's phase history can be audited and reported on.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region types
// RoundEvent is one phase transition of the round state machine.
type RoundEvent struct {
	RunID     string
	Round     int
	Phase     string // "init" | "seeded" | "simulated" | "modeled" | "adapted" | "converged" | "round_limit" | "aborted"
	Detail    string
	CreatedAt time.Time
}

// #endregion types

// #region log-round
// LogRound writes a round event to the round_log table.
func LogRound(db *sql.DB, e RoundEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO round_log (run_id, round, phase, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Round, e.Phase, nullIfEmpty(e.Detail),
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log round: %w", err)
	}
	return nil
}

// #endregion log-round

// #region list-rounds
// ListRounds returns a run's events in insertion order.
func ListRounds(db *sql.DB, runID string) ([]RoundEvent, error) {
	rows, err := db.Query(
		`SELECT round, phase, detail, created_at FROM round_log
		 WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var out []RoundEvent
	for rows.Next() {
		e := RoundEvent{RunID: runID}
		var detail sql.NullString
		var createdStr string
		if err := rows.Scan(&e.Round, &e.Phase, &detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scan round event: %w", err)
		}
		if detail.Valid {
			e.Detail = detail.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-rounds

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
