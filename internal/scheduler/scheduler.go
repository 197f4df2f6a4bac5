package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/omarshaarawi/playbuilder/internal/builder"
	"github.com/omarshaarawi/playbuilder/internal/models"
	"github.com/omarshaarawi/playbuilder/internal/repository/memory"
	"github.com/omarshaarawi/playbuilder/internal/service"
)

const sweepInterval = time.Minute

type HealthChecker interface {
	Health(ctx context.Context) models.HealthReport
}

type Scheduler struct {
	s           gocron.Scheduler
	health      HealthChecker
	repo        *memory.Repository
	sessions    *builder.Sessions
	sendMessage func(string) error

	healthInterval time.Duration
	sessionTTL     time.Duration
}

type Options struct {
	HealthInterval time.Duration
	SessionTTL     time.Duration
	Location       string
}

// NewScheduler builds the background jobs. sendMessage may be nil, in which
// case health transitions are only logged.
func NewScheduler(health HealthChecker, repo *memory.Repository, sessions *builder.Sessions, sendMessage func(string) error, opts Options) (*Scheduler, error) {
	location, err := time.LoadLocation(opts.Location)
	if err != nil {
		slog.Error("Failed to load location", "location", opts.Location, "error", err)
		location = time.Local
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:              s,
		health:         health,
		repo:           repo,
		sessions:       sessions,
		sendMessage:    sendMessage,
		healthInterval: opts.HealthInterval,
		sessionTTL:     opts.SessionTTL,
	}, nil
}

func (s *Scheduler) Start() error {
	var err error

	if s.healthInterval > 0 {
		_, err = s.s.NewJob(
			gocron.DurationJob(s.healthInterval),
			gocron.NewTask(s.checkHealth),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create health check job: %w", err)
		}
	}

	if s.sessionTTL > 0 {
		_, err = s.s.NewJob(
			gocron.DurationJob(sweepInterval),
			gocron.NewTask(s.sweepSessions),
		)
		if err != nil {
			return fmt.Errorf("failed to create session sweep job: %w", err)
		}
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) checkHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), s.probeTimeout())
	defer cancel()

	report := s.health.Health(ctx)
	prev := s.repo.SaveHealth(report)

	if !report.OK {
		slog.Warn("Play service unhealthy", "error", report.Error)
	}

	// first probe only announces an outage
	if prev == nil && report.OK {
		return
	}
	if prev != nil && prev.OK == report.OK {
		return
	}

	text := service.FormatHealth(report)
	if s.sendMessage == nil {
		slog.Info("Play service health changed", "ok", report.OK)
		return
	}
	if err := s.sendMessage(text); err != nil {
		slog.Error("Failed to send health notification", "error", err)
	}
}

func (s *Scheduler) probeTimeout() time.Duration {
	if s.healthInterval > 0 && s.healthInterval < 10*time.Second {
		return s.healthInterval
	}
	return 10 * time.Second
}

func (s *Scheduler) sweepSessions() {
	if removed := s.sessions.Sweep(s.sessionTTL); removed > 0 {
		slog.Info("Swept idle sessions", "removed", removed, "remaining", s.sessions.Len())
	}
}
