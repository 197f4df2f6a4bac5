package builder

import (
	"testing"
	"time"
)

func TestSessions_GetReusesController(t *testing.T) {
	sessions := NewSessions(&MockBackend{}, "KC", "BUF", 500)

	a := sessions.Get("chat-1")
	b := sessions.Get("chat-1")
	c := sessions.Get("chat-2")

	if a != b {
		t.Error("expected same controller for the same key")
	}
	if a == c {
		t.Error("expected distinct controllers for distinct keys")
	}

	state := a.Snapshot()
	if state.Offense != "KC" || state.Defense != "BUF" || state.N != 500 {
		t.Errorf("unexpected defaults %+v", state)
	}
}

func TestSessions_Sweep(t *testing.T) {
	now := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(&MockBackend{}, "KC", "BUF", 0)
	sessions.now = func() time.Time { return now }

	sessions.Get("old")
	now = now.Add(20 * time.Minute)
	sessions.Get("fresh")
	now = now.Add(15 * time.Minute)

	if removed := sessions.Sweep(30 * time.Minute); removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if sessions.Len() != 1 {
		t.Errorf("expected 1 session left, got %d", sessions.Len())
	}
	if state := sessions.Get("fresh").Snapshot(); state.N != DefaultSamples {
		t.Errorf("expected default samples, got %d", state.N)
	}
}
