package worker

import (
	"context"
	"strings"
	"testing"

	"mealplanner/internal/domain"
	"mealplanner/internal/mocks"
	"mealplanner/internal/service"
	"mealplanner/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type stubUpdater struct {
	mock.Mock
}

func (s *stubUpdater) UpdateMenu(ctx context.Context, userID int, startDate string, days int, slots []int) (string, error) {
	args := s.Called(ctx, userID, startDate, days, slots)
	return args.String(0), args.Error(1)
}

func setupWorker(t *testing.T) (*stubUpdater, *mocks.AccountRepository, *GenerationWorker) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	updater := &stubUpdater{}
	updater.Test(t)
	t.Cleanup(func() { updater.AssertExpectations(t) })
	accounts := mocks.NewAccountRepository(t)
	return updater, accounts, NewGenerationWorker(updater, accounts, storage.NewRedisStore(client))
}

func TestGenerationWorker_SuccessfulJob(t *testing.T) {
	updater, accounts, w := setupWorker(t)
	ctx := context.Background()

	updater.On("UpdateMenu", mock.Anything, 7, "2025-10-14", 1, []int{2}).
		Return("[2025-10-14,42,2]", nil).Once()
	accounts.On("UpdateGeneratedMenu", 7, "[2025-10-14,42,2]").Return(nil).Once()

	job, err := w.Enqueue(ctx, 7, "2025-10-14", 1, []int{2})
	assert.NoError(t, err)
	assert.Equal(t, domain.JobPending, job.State)

	w.process(ctx, *job)

	done, err := w.Job(ctx, 7, job.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.JobDone, done.State)
	assert.Equal(t, "[2025-10-14,42,2]", done.Selection)
}

func TestGenerationWorker_ExhaustedJobFails(t *testing.T) {
	updater, _, w := setupWorker(t)
	ctx := context.Background()

	updater.On("UpdateMenu", mock.Anything, 7, "2025-10-14", 1, []int{2}).
		Return("", &service.GenerationExhaustedError{Date: "2025-10-14", Slot: 2, Attempts: 5}).Once()

	job, err := w.Enqueue(ctx, 7, "2025-10-14", 1, []int{2})
	assert.NoError(t, err)

	w.process(ctx, *job)

	failed, err := w.Job(ctx, 7, job.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.JobFailed, failed.State)
	assert.NotEmpty(t, failed.Error)
}

func TestGenerationWorker_FullQueueJobNotLeftPending(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := storage.NewRedisStore(client)

	updater := &stubUpdater{}
	updater.Test(t)
	w := NewGenerationWorker(updater, mocks.NewAccountRepository(t), store)
	w.queue = make(chan domain.GenerationJob, 1)
	ctx := context.Background()

	_, err := w.Enqueue(ctx, 7, "2025-10-14", 1, []int{2})
	assert.NoError(t, err)

	_, err = w.Enqueue(ctx, 7, "2025-10-15", 1, []int{2})
	assert.ErrorIs(t, err, service.ErrValidation)

	// The rejected job must not stay pollable as pending.
	for _, key := range mr.Keys() {
		if !strings.HasPrefix(key, "menugen:job:") {
			continue
		}
		job, err := store.GetJob(ctx, strings.TrimPrefix(key, "menugen:job:"))
		assert.NoError(t, err)
		if job.StartDate == "2025-10-15" {
			assert.Equal(t, domain.JobFailed, job.State)
			assert.Equal(t, "generation queue is full", job.Error)
			return
		}
	}
	t.Fatal("rejected job missing from store")
}

func TestGenerationWorker_JobsArePrivate(t *testing.T) {
	_, _, w := setupWorker(t)
	ctx := context.Background()

	job, err := w.Enqueue(ctx, 7, "2025-10-14", 1, []int{2})
	assert.NoError(t, err)

	_, err = w.Job(ctx, 99, job.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = w.Job(ctx, 7, "no-such-job")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
