package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/omarshaarawi/playbuilder/internal/builder"
	"github.com/omarshaarawi/playbuilder/internal/models"
	"github.com/omarshaarawi/playbuilder/internal/repository/memory"
)

type scriptedHealth struct {
	reports []models.HealthReport
	calls   int
}

func (s *scriptedHealth) Health(ctx context.Context) models.HealthReport {
	r := s.reports[s.calls]
	s.calls++
	return r
}

func newTestScheduler(t *testing.T, health HealthChecker, sent *[]string) *Scheduler {
	t.Helper()
	send := func(text string) error {
		*sent = append(*sent, text)
		return nil
	}
	sched, err := NewScheduler(health, memory.NewRepository(), builder.NewSessions(nil, "KC", "BUF", 0), send, Options{
		HealthInterval: time.Minute,
		SessionTTL:     time.Hour,
		Location:       "America/Chicago",
	})
	if err != nil {
		t.Fatalf("NewScheduler() error: %v", err)
	}
	return sched
}

func TestCheckHealth_NotifiesOnTransitions(t *testing.T) {
	health := &scriptedHealth{reports: []models.HealthReport{
		{OK: true},
		{OK: true},
		{OK: false, Error: "unexpected status code: 503"},
		{OK: false, Error: "unexpected status code: 503"},
		{OK: true},
	}}
	var sent []string
	sched := newTestScheduler(t, health, &sent)

	for range health.reports {
		sched.checkHealth()
	}

	if len(sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d: %v", len(sent), sent)
	}
	if !strings.Contains(sent[0], "down") || !strings.Contains(sent[0], "503") {
		t.Errorf("unexpected outage notification %q", sent[0])
	}
	if !strings.Contains(sent[1], "up") {
		t.Errorf("unexpected recovery notification %q", sent[1])
	}

	if last := sched.repo.GetHealth(); last == nil || !last.OK {
		t.Errorf("expected latest report stored, got %+v", last)
	}
}

func TestCheckHealth_FirstProbeDown(t *testing.T) {
	health := &scriptedHealth{reports: []models.HealthReport{{OK: false, Error: "connection refused"}}}
	var sent []string
	sched := newTestScheduler(t, health, &sent)

	sched.checkHealth()

	if len(sent) != 1 {
		t.Errorf("expected an outage notification on first probe, got %v", sent)
	}
}

func TestCheckHealth_WithoutNotifier(t *testing.T) {
	health := &scriptedHealth{reports: []models.HealthReport{{OK: false}}}
	sched, err := NewScheduler(health, memory.NewRepository(), builder.NewSessions(nil, "", "", 0), nil, Options{Location: "UTC"})
	if err != nil {
		t.Fatalf("NewScheduler() error: %v", err)
	}

	sched.checkHealth()

	if sched.repo.GetHealth() == nil {
		t.Error("report should be stored even without a notifier")
	}
}

func TestStartStop(t *testing.T) {
	health := &scriptedHealth{reports: make([]models.HealthReport, 10)}
	sched, err := NewScheduler(health, memory.NewRepository(), builder.NewSessions(nil, "", "", 0), nil, Options{
		SessionTTL: time.Hour,
		Location:   "Not/AZone",
	})
	if err != nil {
		t.Fatalf("NewScheduler() error: %v", err)
	}

	if err := sched.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := sched.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}
