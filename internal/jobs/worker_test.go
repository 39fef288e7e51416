package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/job"
)

type fakeStore struct {
	queue   []job.Job
	done    []uuid.UUID
	failed  []job.Job
	retries []time.Time
}

func (f *fakeStore) Claim(context.Context) (*job.Job, error) {
	if len(f.queue) == 0 {
		return nil, nil
	}
	j := f.queue[0]
	f.queue = f.queue[1:]
	j.Attempts++
	return &j, nil
}

func (f *fakeStore) MarkDone(_ context.Context, id uuid.UUID) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, j job.Job, cause string, retryAt *time.Time) error {
	j.LastError = cause
	f.failed = append(f.failed, j)
	if retryAt != nil {
		f.retries = append(f.retries, *retryAt)
	}
	return nil
}

func testJob(jobType string) job.Job {
	return job.Job{ID: uuid.New(), Type: jobType, MaxAttempts: 3}
}

func TestRunOnce_Success(t *testing.T) {
	store := &fakeStore{queue: []job.Job{testJob("send")}}
	w := NewWorker(store, time.Second)

	var got job.Job
	w.Handle("send", func(_ context.Context, j job.Job) error {
		got = j
		return nil
	})

	processed, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	require.Len(t, store.done, 1)
	assert.Equal(t, got.ID, store.done[0])
	assert.Empty(t, store.failed)
}

func TestRunOnce_EmptyQueue(t *testing.T) {
	w := NewWorker(&fakeStore{}, time.Second)
	processed, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestRunOnce_FailureSchedulesRetry(t *testing.T) {
	store := &fakeStore{queue: []job.Job{testJob("send")}}
	w := NewWorker(store, time.Second)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }
	w.Handle("send", func(context.Context, job.Job) error { return errors.New("provider down") })

	processed, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	require.Len(t, store.failed, 1)
	assert.Equal(t, "provider down", store.failed[0].LastError)
	require.Len(t, store.retries, 1)
	assert.Equal(t, now.Add(30*time.Second), store.retries[0])
}

func TestRunOnce_ExhaustedAttemptsParkJob(t *testing.T) {
	j := testJob("send")
	j.Attempts = 2 // claim bumps to 3 == max
	store := &fakeStore{queue: []job.Job{j}}
	w := NewWorker(store, time.Second)
	w.Handle("send", func(context.Context, job.Job) error { return errors.New("still down") })

	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, store.failed, 1)
	assert.Empty(t, store.retries, "no retry once attempts are exhausted")
}

func TestRunOnce_UnknownTypeFailsImmediately(t *testing.T) {
	store := &fakeStore{queue: []job.Job{testJob("mystery")}}
	w := NewWorker(store, time.Second)

	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, store.failed, 1)
	assert.Contains(t, store.failed[0].LastError, "no handler")
	assert.Empty(t, store.retries)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 30*time.Second, backoff(1))
	assert.Equal(t, time.Minute, backoff(2))
	assert.Equal(t, 2*time.Minute, backoff(3))
	assert.Equal(t, 15*time.Minute, backoff(100))
}
