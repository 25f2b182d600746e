package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/dcwatch/pkg/domain"
)

// Schedule modes
const (
	ModeInterval = "interval"
	ModeHours    = "hours"
)

// CycleRunner runs a single ingestion cycle
type CycleRunner interface {
	RunCycle(ctx context.Context) domain.CycleStats
}

// SchedulerConfig defines when cycles run
type SchedulerConfig struct {
	Mode          string
	PollInterval  time.Duration  // interval mode, time between cycles
	CheckInterval time.Duration  // hours mode, how often the clock is checked
	RunHours      []int          // hours mode, hours of the day in Location
	Location      *time.Location // hours mode, time zone of RunHours
	Now           func() time.Time
}

// Scheduler drives ingestion cycles, never more than one at a time
type Scheduler struct {
	runner CycleRunner
	cfg    SchedulerConfig

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
	lastRun time.Time // start of the last run slot (hour) in hours mode
	running bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(runner CycleRunner, cfg SchedulerConfig) *Scheduler {
	if cfg.Mode == "" {
		cfg.Mode = ModeHours
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 6 * time.Hour
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{runner: runner, cfg: cfg}
}

// Start begins the scheduler loop in background
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	if s.cfg.Mode == ModeInterval {
		go s.intervalWorker(ctx)
		lgr.Printf("[INFO] scheduler started, cycle every %v", s.cfg.PollInterval)
		return
	}
	go s.hoursWorker(ctx)
	lgr.Printf("[INFO] scheduler started, cycles at hours %v (%s), check every %v",
		s.cfg.RunHours, s.cfg.Location, s.cfg.CheckInterval)
}

// Stop gracefully stops the scheduler, waits for the running cycle
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// Running reports whether a cycle is in progress
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// intervalWorker runs a cycle immediately and then every poll interval
func (s *Scheduler) intervalWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

// hoursWorker checks the clock on start and every check interval, runs once per matching hour
func (s *Scheduler) hoursWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	s.checkAndRun(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

func (s *Scheduler) checkAndRun(ctx context.Context) {
	slot, ok := s.due(s.cfg.Now())
	if !ok {
		return
	}
	s.mu.Lock()
	s.lastRun = slot
	s.mu.Unlock()
	lgr.Printf("[INFO] scheduled run for %s", slot.Format("2006-01-02 15:04 MST"))
	s.run(ctx)
}

// due returns the current hour slot and true if a cycle should run now.
// The slot includes the date, so the same hour on the next day runs again.
func (s *Scheduler) due(now time.Time) (time.Time, bool) {
	local := now.In(s.cfg.Location)
	if !slices.Contains(s.cfg.RunHours, local.Hour()) {
		return time.Time{}, false
	}
	slot := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, s.cfg.Location)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun.Equal(slot) {
		return time.Time{}, false
	}
	return slot, true
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()
	s.runner.RunCycle(ctx)
}
