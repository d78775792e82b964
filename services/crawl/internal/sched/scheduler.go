// Package sched owns the autonomous trigger policy: a bootstrap pass when
// the catalog is empty at startup, and a recurring full pass on a cron
// cadence for the lifetime of the process.
package sched

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"bookapp/internal/runlock"
	"bookapp/services/crawl/internal/app"
)

// DefaultSchedule runs the full pass every Monday at midnight.
const DefaultSchedule = "0 0 * * 1"

// Config wires the scheduler's dependencies.
type Config struct {
	App *app.App
	// Schedule is a cron expression; DefaultSchedule when empty.
	Schedule string
	// Lock, when set, makes skip-if-running hold across replicas. A nil
	// lock means in-process exclusion only.
	Lock *runlock.Lock
}

// Scheduler is an owned component with an explicit start/stop lifecycle,
// handed to the process entry point rather than living as package state.
type Scheduler struct {
	app      *app.App
	cron     *cron.Cron
	schedule string
	lock     *runlock.Lock

	wg sync.WaitGroup
}

// New constructs a stopped scheduler.
func New(cfg Config) *Scheduler {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}
	logger := &cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		// A tick that fires while the previous pass is still crawling is
		// skipped, never queued or overlapped.
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	return &Scheduler{
		app:      cfg.App,
		cron:     c,
		schedule: schedule,
		lock:     cfg.Lock,
	}
}

// Start registers the recurring trigger and, independently, launches one
// asynchronous bootstrap pass when the catalog is empty. Startup is never
// blocked on crawling.
func (s *Scheduler) Start(ctx context.Context) error {
	empty, err := s.app.CatalogEmpty()
	if err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}
	if empty {
		slog.Info("catalog empty, launching bootstrap crawl")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runAll(ctx)
		}()
	} else {
		slog.Info("catalog has entries, recurring trigger only")
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.runAll(ctx) }); err != nil {
		return fmt.Errorf("register schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	slog.Info("crawl schedule registered", "schedule", s.schedule)
	return nil
}

// Stop stops accepting new triggers and waits for the bootstrap pass, if
// any, to settle. An in-flight cron pass may be abandoned; per-run
// transaction boundaries keep persisted state consistent.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) runAll(ctx context.Context) {
	release, ok, err := s.lock.Acquire(ctx)
	if err != nil {
		slog.Error("run lock unavailable, skipping pass", "err", err)
		return
	}
	if !ok {
		slog.Info("another replica is crawling, skipping pass")
		return
	}
	defer release()

	runs, err := s.app.TriggerRunAll(ctx)
	if err != nil {
		slog.Error("scheduled crawl pass aborted", "err", err, "completed_runs", len(runs))
		return
	}
	for _, run := range runs {
		slog.Info("scheduled crawl run settled",
			"source", string(run.Source), "status", string(run.Status), "books_found", run.BooksFound)
	}
}

// cronLogger adapts slog to the cron logger interface.
type cronLogger struct{}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"err", err}, keysAndValues...)
	slog.Error("cron: "+msg, args...)
}
