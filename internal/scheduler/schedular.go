package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultReapSchedule = "@every 1m"

// Reaper closes sessions that have been idle for too long.
type Reaper interface {
	ReapIdle() int
}

type Scheduler struct {
	cron        *cron.Cron
	reaper      Reaper
	logger      *zap.Logger
	schedule    string
	entryID     cron.EntryID
	running     bool
	mu          sync.Mutex
	lastRun     time.Time
	lastReaped  int
	totalReaped int
}

func NewScheduler(reaper Reaper, schedule string, logger *zap.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultReapSchedule
	}
	cronLogger := zapCronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		reaper:   reaper,
		logger:   logger,
		schedule: schedule,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, s.runReap)
	if err != nil {
		return fmt.Errorf("invalid reap schedule %q: %w", s.schedule, err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info("Session reaper started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(id).Next))
	return nil
}

func (s *Scheduler) runReap() {
	start := time.Now()
	reaped := s.reaper.ReapIdle()

	s.mu.Lock()
	s.lastRun = start
	s.lastReaped = reaped
	s.totalReaped += reaped
	s.mu.Unlock()

	s.logger.Debug("Session reap completed",
		zap.Int("reaped", reaped),
		zap.Duration("duration", time.Since(start)))
}

// Stop halts the cron and waits for a running reap to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping session reaper")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering session reap")
	go s.runReap()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":      s.running,
		"schedule":     s.schedule,
		"last_run":     s.lastRun,
		"last_reaped":  s.lastReaped,
		"total_reaped": s.totalReaped,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	return status
}

// zapCronLogger lets cron report through zap.
type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
