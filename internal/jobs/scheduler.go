package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"workforce/internal/config"
	"workforce/internal/tasks"
)

// Dispatcher hands a maintenance task to whoever runs it.
type Dispatcher interface {
	Dispatch(ctx context.Context, task string) error
}

// DispatchFunc runs tasks in the calling process.
type DispatchFunc func(ctx context.Context, task string) error

func (f DispatchFunc) Dispatch(ctx context.Context, task string) error {
	return f(ctx, task)
}

// StreamDispatcher appends tasks to a Redis stream for the worker.
type StreamDispatcher struct {
	Client redis.Cmdable
	Stream string
}

func (d StreamDispatcher) Dispatch(ctx context.Context, task string) error {
	return d.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.Stream,
		Values: map[string]any{"type": task},
	}).Err()
}

type Scheduler struct {
	cron       *cron.Cron
	dispatcher Dispatcher
	specs      map[string]string
	log        zerolog.Logger
}

func NewScheduler(cfg config.JobsConfig, dispatcher Dispatcher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		dispatcher: dispatcher,
		specs: map[string]string{
			tasks.Cleanup:      cfg.CleanupSpec,
			tasks.EmailPurge:   cfg.EmailPurgeSpec,
			tasks.RequestReset: cfg.RequestSpec,
		},
		log: log,
	}
}

func (s *Scheduler) Start() error {
	if s.dispatcher == nil {
		return nil
	}

	for task, spec := range s.specs {
		if spec == "" {
			continue
		}
		task := task
		if _, err := s.cron.AddFunc(spec, func() { s.enqueue(task) }); err != nil {
			return fmt.Errorf("schedule %s: %w", task, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for a running task to return.
func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stopped with a task still running")
	}
}

func (s *Scheduler) enqueue(task string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := s.dispatcher.Dispatch(ctx, task); err != nil {
		s.log.Error().Err(err).Str("task", task).Msg("dispatch maintenance task failed")
	}
}
