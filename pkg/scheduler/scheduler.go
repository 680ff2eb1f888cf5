package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"task-api/pkg/logger"
)

// JobScheduler runs housekeeping work on a cron schedule.
type JobScheduler interface {
	Start()
	Stop()
	AddJob(id, cronExpr string, task func()) error
	ListJobs() map[string]*JobInfo
	IsRunning() bool
}

type JobInfo struct {
	ID       string      `json:"id"`
	CronExpr string      `json:"cron"`
	Job      *gocron.Job `json:"-"`
	Runs     int         `json:"runs"`
	LastRun  *time.Time  `json:"lastRun,omitempty"`
	NextRun  *time.Time  `json:"nextRun,omitempty"`
}

type GocronScheduler struct {
	scheduler *gocron.Scheduler
	jobs      map[string]*JobInfo
	mu        sync.RWMutex
	running   bool
	log       *slog.Logger
}

func NewJobScheduler() *GocronScheduler {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	return &GocronScheduler{
		scheduler: scheduler,
		jobs:      make(map[string]*JobInfo),
		log:       logger.WithComponent("scheduler"),
	}
}

func (s *GocronScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("Scheduler is already running")
		return
	}

	s.scheduler.StartAsync()
	s.running = true
	s.log.Info("Scheduler started", "jobs", len(s.jobs))
}

func (s *GocronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.scheduler.Stop()
	s.running = false
	s.log.Info("Scheduler stopped")
}

func (s *GocronScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// AddJob registers task under id. A job fires once on start and then on every
// cron tick; overlapping runs of the same job are skipped.
func (s *GocronScheduler) AddJob(id, cronExpr string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job with ID %s already exists", id)
	}

	job, err := s.scheduler.Cron(cronExpr).StartImmediately().Do(func() {
		now := time.Now()

		s.mu.Lock()
		if info, exists := s.jobs[id]; exists {
			info.Runs++
			info.LastRun = &now
		}
		s.mu.Unlock()

		s.log.Debug("Executing job", "job_id", id)
		task()
	})
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}

	s.jobs[id] = &JobInfo{
		ID:       id,
		CronExpr: cronExpr,
		Job:      job,
	}

	s.log.Info("Job added", "job_id", id, "cron", cronExpr)
	return nil
}

func (s *GocronScheduler) ListJobs() map[string]*JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make(map[string]*JobInfo, len(s.jobs))
	for id, info := range s.jobs {
		jobs[id] = snapshot(info)
	}
	return jobs
}

// snapshot copies info so callers never race with running jobs.
func snapshot(info *JobInfo) *JobInfo {
	out := &JobInfo{
		ID:       info.ID,
		CronExpr: info.CronExpr,
		Job:      info.Job,
		Runs:     info.Runs,
	}
	if info.LastRun != nil {
		lastRun := *info.LastRun
		out.LastRun = &lastRun
	}
	if info.Job != nil {
		nextRun := info.Job.NextRun()
		out.NextRun = &nextRun
	}
	return out
}

func ValidateCronExpression(cronExpr string) error {
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Cron(cronExpr).Do(func() {}); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
