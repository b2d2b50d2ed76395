package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mealplanner/internal/domain"
	"mealplanner/internal/service"

	"github.com/google/uuid"
)

const jobQueueDepth = 64

// MenuUpdater produces an updated selection string for a user.
type MenuUpdater interface {
	UpdateMenu(ctx context.Context, userID int, startDate string, days int, slots []int) (string, error)
}

// GenerationWorker runs menu generation off the request path. Enqueue returns
// a pending job immediately; clients poll Job until it reaches a terminal
// state.
type GenerationWorker struct {
	generator MenuUpdater
	accounts  service.AccountRepository
	jobs      service.JobStore
	queue     chan domain.GenerationJob
}

func NewGenerationWorker(generator MenuUpdater, accounts service.AccountRepository, jobs service.JobStore) *GenerationWorker {
	return &GenerationWorker{
		generator: generator,
		accounts:  accounts,
		jobs:      jobs,
		queue:     make(chan domain.GenerationJob, jobQueueDepth),
	}
}

func (w *GenerationWorker) Enqueue(ctx context.Context, userID int, startDate string, days int, slots []int) (*domain.GenerationJob, error) {
	now := time.Now().UTC()
	job := domain.GenerationJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     domain.JobPending,
		StartDate: startDate,
		Days:      days,
		Slots:     slots,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := w.jobs.SaveJob(ctx, &job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	select {
	case w.queue <- job:
		return &job, nil
	default:
		// The saved job must not stay pollable as pending when it will never run.
		job.State = domain.JobFailed
		job.Error = "generation queue is full"
		job.UpdatedAt = time.Now().UTC()
		if err := w.jobs.SaveJob(ctx, &job); err != nil {
			log.Printf("job %s: failed to mark rejected: %v", job.ID, err)
		}
		return nil, fmt.Errorf("%w: generation queue is full", service.ErrValidation)
	}
}

func (w *GenerationWorker) Job(ctx context.Context, userID int, jobID string) (*domain.GenerationJob, error) {
	job, err := w.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, service.ErrNotFound
	}
	// Jobs are private to the user who queued them.
	if job.UserID != userID {
		return nil, service.ErrNotFound
	}
	return job, nil
}

// Run drains the queue until ctx is cancelled.
func (w *GenerationWorker) Run(ctx context.Context) {
	log.Println("Starting menu generation worker...")
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.queue:
			w.process(ctx, job)
		}
	}
}

func (w *GenerationWorker) process(ctx context.Context, job domain.GenerationJob) {
	job.State = domain.JobRunning
	job.UpdatedAt = time.Now().UTC()
	if err := w.jobs.SaveJob(ctx, &job); err != nil {
		log.Printf("job %s: failed to mark running: %v", job.ID, err)
	}

	selection, err := w.generator.UpdateMenu(ctx, job.UserID, job.StartDate, job.Days, job.Slots)
	if err != nil {
		job.State = domain.JobFailed
		job.Error = err.Error()
		var exhausted *service.GenerationExhaustedError
		if errors.As(err, &exhausted) {
			log.Printf("job %s: exhausted at %s slot %d, last output %q",
				job.ID, exhausted.Date, exhausted.Slot, exhausted.LastOutput)
		} else {
			log.Printf("job %s: generation failed: %v", job.ID, err)
		}
	} else if err := w.accounts.UpdateGeneratedMenu(job.UserID, selection); err != nil {
		job.State = domain.JobFailed
		job.Error = "failed to save generated menu"
		log.Printf("job %s: failed to persist selection: %v", job.ID, err)
	} else {
		job.State = domain.JobDone
		job.Selection = selection
	}

	job.UpdatedAt = time.Now().UTC()
	if err := w.jobs.SaveJob(ctx, &job); err != nil {
		log.Printf("job %s: failed to save final state: %v", job.ID, err)
	}
}
