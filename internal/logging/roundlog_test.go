package logging

import (
	"path/filepath"
	"testing"

	"github.com/adaptivemd/asmd/internal/store"
)

func TestLogAndListRounds(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureRun("r1", "{}"); err != nil {
		t.Fatalf("EnsureRun: %v", err)
	}

	events := []RoundEvent{
		{RunID: "r1", Round: 0, Phase: "seeded", Detail: "3 seeds"},
		{RunID: "r1", Round: 0, Phase: "simulated"},
		{RunID: "r1", Round: 0, Phase: "modeled"},
	}
	for _, e := range events {
		if err := LogRound(s.DB(), e); err != nil {
			t.Fatalf("LogRound: %v", err)
		}
	}

	got, err := ListRounds(s.DB(), "r1")
	if err != nil {
		t.Fatalf("ListRounds: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i, e := range got {
		if e.Phase != events[i].Phase || e.Round != events[i].Round {
			t.Fatalf("event %d = %+v, want %+v", i, e, events[i])
		}
		if e.CreatedAt.IsZero() {
			t.Fatalf("event %d missing timestamp", i)
		}
	}
	if got[0].Detail != "3 seeds" {
		t.Fatalf("detail = %q", got[0].Detail)
	}
	if got[1].Detail != "" {
		t.Fatalf("expected empty detail, got %q", got[1].Detail)
	}
}

func TestListRoundsEmptyRun(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	got, err := ListRounds(s.DB(), "nope")
	if err != nil {
		t.Fatalf("ListRounds: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no events, got %d", len(got))
	}
}
