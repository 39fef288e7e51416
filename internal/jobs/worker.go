package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/job"
)

// Store is the queue surface the worker needs; *Repo satisfies it.
type Store interface {
	Claim(ctx context.Context) (*job.Job, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, j job.Job, cause string, retryAt *time.Time) error
}

// HandlerFunc executes one job payload.
type HandlerFunc func(ctx context.Context, j job.Job) error

type Worker struct {
	store    Store
	handlers map[string]HandlerFunc
	poll     time.Duration
	now      func() time.Time
}

func NewWorker(store Store, poll time.Duration) *Worker {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &Worker{
		store:    store,
		handlers: map[string]HandlerFunc{},
		poll:     poll,
		now:      time.Now,
	}
}

func (w *Worker) Handle(jobType string, fn HandlerFunc) {
	w.handlers[jobType] = fn
}

// Run drains the queue until ctx is cancelled, sleeping poll between
// empty polls and between errors.
func (w *Worker) Run(ctx context.Context) {
	log.Printf("worker started, polling every %s", w.poll)
	for {
		processed, err := w.RunOnce(ctx)
		if err != nil {
			log.Printf("worker: %v", err)
		}
		if processed && err == nil {
			continue // drain without sleeping while work remains
		}
		select {
		case <-ctx.Done():
			log.Println("worker stopped")
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce claims and executes at most one job. It reports whether a job
// was processed so Run can drain the queue eagerly.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	j, err := w.store.Claim(ctx)
	if err != nil || j == nil {
		return false, err
	}

	fn, ok := w.handlers[j.Type]
	if !ok {
		// unknown type never succeeds; park it immediately
		return true, w.store.MarkFailed(ctx, *j, "no handler for job type "+j.Type, nil)
	}

	if err := fn(ctx, *j); err != nil {
		if j.Attempts >= j.MaxAttempts {
			return true, w.store.MarkFailed(ctx, *j, err.Error(), nil)
		}
		retryAt := w.now().Add(backoff(j.Attempts))
		return true, w.store.MarkFailed(ctx, *j, err.Error(), &retryAt)
	}
	return true, w.store.MarkDone(ctx, j.ID)
}

// backoff doubles per attempt: 30s, 1m, 2m, ... capped at 15m.
func backoff(attempts int) time.Duration {
	d := 30 * time.Second
	for i := 1; i < attempts && d < 15*time.Minute; i++ {
		d *= 2
	}
	if d > 15*time.Minute {
		d = 15 * time.Minute
	}
	return d
}
