// Package scheduler runs the periodic analytics jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/kosarica/grooming-service/config"
	"github.com/kosarica/grooming-service/internal/analytics"
	"github.com/kosarica/grooming-service/internal/types"
)

// Job names
const (
	JobAlertSnapshot = "alert-snapshot"
	JobBackfill      = "classification-backfill"
)

// jobTimeout bounds a single run
const jobTimeout = 5 * time.Minute

var jobRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grooming_scheduler_job_runs_total",
		Help: "Scheduled job runs by job and outcome",
	},
	[]string{"job", "outcome"},
)

// Analytics is what the jobs need from the analytics service
type Analytics interface {
	DefaultPeriod() analytics.Period
	Alerts(ctx context.Context, p analytics.Period) ([]types.Alert, error)
	Backfill(ctx context.Context, limit int) (analytics.BackfillResult, error)
}

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

// Scheduler owns a cron instance and the registered jobs
type Scheduler struct {
	service Analytics
	config  config.SchedulerConfig
	logger  zerolog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]job
	running bool
}

// New creates a scheduler. Jobs with an empty schedule are not registered.
func New(service Analytics, cfg config.SchedulerConfig, logger zerolog.Logger) *Scheduler {
	s := &Scheduler{
		service: service,
		config:  cfg,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		jobs:    make(map[string]job),
	}
	s.jobs[JobAlertSnapshot] = job{name: JobAlertSnapshot, schedule: cfg.AlertSnapshot, run: s.alertSnapshot}
	s.jobs[JobBackfill] = job{name: JobBackfill, schedule: cfg.BackfillSchedule, run: s.backfill}
	return s
}

// normalize accepts both five and six field expressions
func normalize(schedule string) string {
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

// Start schedules every job with a non-empty expression. It is a no-op when
// the scheduler is disabled or already running.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler is disabled")
		return nil
	}

	c := cron.New(cron.WithSeconds())
	for _, j := range s.jobs {
		if j.schedule == "" {
			continue
		}
		j := j
		if _, err := c.AddFunc(normalize(j.schedule), func() { s.execute(context.Background(), j) }); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
		s.logger.Info().Str("job", j.name).Str("schedule", j.schedule).Msg("Job scheduled")
	}

	c.Start()
	s.cron = c
	s.running = true
	return nil
}

// Stop waits for running jobs to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	c := s.cron
	s.running = false
	s.cron = nil
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
		s.logger.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether Start scheduled the jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow runs a job synchronously, outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j job) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	err := j.run(ctx)
	if err != nil {
		jobRuns.WithLabelValues(j.name, "error").Inc()
		s.logger.Error().Err(err).Str("job", j.name).Dur("duration", time.Since(start)).Msg("Job failed")
		return err
	}
	jobRuns.WithLabelValues(j.name, "success").Inc()
	s.logger.Info().Str("job", j.name).Dur("duration", time.Since(start)).Msg("Job completed")
	return nil
}

func (s *Scheduler) alertSnapshot(ctx context.Context) error {
	alerts, err := s.service.Alerts(ctx, s.service.DefaultPeriod())
	if err != nil {
		return err
	}
	counts := map[types.Severity]int{}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	s.logger.Info().
		Int("total", len(alerts)).
		Int("critical", counts[types.SeverityCritical]).
		Int("warning", counts[types.SeverityWarning]).
		Int("info", counts[types.SeverityInfo]).
		Msg("Alert snapshot")
	return nil
}

func (s *Scheduler) backfill(ctx context.Context) error {
	res, err := s.service.Backfill(ctx, s.config.BackfillLimit)
	if err != nil {
		return err
	}
	s.logger.Info().
		Int("processed", res.Processed).
		Int("failed", res.Failed).
		Msg("Classification backfill")
	return nil
}
