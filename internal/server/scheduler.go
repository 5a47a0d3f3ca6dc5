package server

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
)

// Scheduler requests a full rebuild at a fixed interval. It covers content
// that changes without file system events, such as network mounts.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler that calls task every interval. Runs
// never overlap; a tick that arrives while a run is in progress is skipped.
func NewScheduler(interval time.Duration, task func()) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.ValidationError("rebuild interval must be positive").
			WithContext("interval", interval.String()).Build()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.ServerError("create scheduler").WithCause(err).Build()
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = s.Shutdown()
		return nil, errors.ServerError("schedule periodic rebuild").WithCause(err).
			WithContext("interval", interval.String()).Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins running the job.
func (s *Scheduler) Start() {
	slog.Info("Starting rebuild scheduler", logfields.Count(len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running task.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
