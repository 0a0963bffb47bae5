package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Task is one schedulable unit of work. A task reporting ErrCycleRunning
// is treated as a skipped firing, not a failure.
type Task func(ctx context.Context) error

// Scheduler drives the registered pipelines on independent cron cadences.
// Firings of the same task never overlap: the orchestrators guard
// themselves, and this layer logs the skip.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Register adds a task under a standard 5-field cron spec.
func (s *Scheduler) Register(spec, name string, task Task) error {
	_, err := s.cron.AddFunc(spec, func() {
		err := task(context.Background())
		switch {
		case errors.Is(err, ErrCycleRunning):
			slog.Info("scheduled run skipped, previous still running", "task", name)
		case err != nil:
			slog.Error("scheduled run failed", "task", name, "error", err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts future firings and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
