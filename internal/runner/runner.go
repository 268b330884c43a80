// Package runner implements the agent runner shell: it accepts a task and
// reports a structured result to every configured publisher.
package runner

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	applog "openclaw/internal/log"
)

// Publisher delivers a task result to an outside consumer.
type Publisher interface {
	Publish(ctx context.Context, r Result) error
}

// Runner executes tasks. Task execution is a placeholder: every valid task
// reports success without running any step.
type Runner struct {
	publishers []Publisher
	logger     *applog.Logger
}

func New(logger *applog.Logger, publishers ...Publisher) *Runner {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Runner{
		publishers: publishers,
		logger:     logger.WithComponent(applog.ComponentRunner),
	}
}

// Run executes the task and publishes its result. Publishing failures are
// logged and do not change the result.
func (r *Runner) Run(ctx context.Context, t Task) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	t = t.WithDefaults()

	start := time.Now()
	r.logger.InfoContext(ctx, "Running task", applog.NewFields().WithTask(t.ID, t.Model).ToSlice()...)

	result := Result{
		TaskID:    t.ID,
		Model:     t.Model,
		Status:    StatusSuccess,
		Output:    fmt.Sprintf("Task %s completed (stub)", t.ID),
		StepsUsed: 0,
	}

	for _, p := range r.publishers {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, result); err != nil {
			r.logger.ErrorContext(ctx, "Failed to publish task result",
				applog.FieldTaskID, t.ID,
				applog.FieldOperation, applog.OpPublish,
				applog.FieldError, err)
		}
	}

	r.logger.InfoContext(ctx, "Task finished",
		applog.FieldTaskID, t.ID,
		applog.FieldStatus, string(result.Status),
		applog.FieldDuration, time.Since(start).Milliseconds())

	return result, nil
}

// WriterPublisher writes each result as one JSON line.
type WriterPublisher struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterPublisher(w io.Writer) *WriterPublisher {
	return &WriterPublisher{w: w}
}

func (p *WriterPublisher) Publish(_ context.Context, r Result) error {
	body, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.w.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
