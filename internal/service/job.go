package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/metrics"
)

// JobStore is the persistence surface the job service needs.
// *repository.Queries satisfies it.
type JobStore interface {
	CreateJob(ctx context.Context, j *domain.JobPosting) (*domain.JobPosting, error)
	GetJob(ctx context.Context, id uuid.UUID) (*domain.JobPosting, error)
	ListJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]*domain.JobPosting, error)
	CountActiveJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error)
	UpdateJob(ctx context.Context, j *domain.JobPosting) (*domain.JobPosting, error)
	CloseJob(ctx context.Context, id uuid.UUID) error
}

// JobService manages job postings and enforces the publishing gates.
type JobService struct {
	store  JobStore
	logger *slog.Logger
}

// NewJobService creates the job service.
func NewJobService(store JobStore, logger *slog.Logger) *JobService {
	return &JobService{store: store, logger: logger}
}

// Create publishes a new posting. Gates, in order: draft validity, an
// active or trialing subscription, and the plan's active posting quota.
// The stored description resolves to the manual text when present,
// otherwise the AI draft.
func (s *JobService) Create(ctx context.Context, recruiter *domain.Recruiter, draft domain.JobDraft) (*domain.JobPosting, error) {
	const op = "job.create"

	if err := draft.Validate(op); err != nil {
		return nil, err
	}

	if !recruiter.SubscriptionStatus.CanPublish() {
		metrics.JobPostingsBlocked.WithLabelValues("subscription").Inc()
		return nil, domain.SubscriptionInactive(op, recruiter.SubscriptionStatus)
	}

	plan := recruiter.Plan()
	if !plan.Unlimited() {
		active, err := s.store.CountActiveJobsByRecruiter(ctx, recruiter.ID)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to count active postings")
		}
		if !plan.AllowsMorePostings(active) {
			metrics.JobPostingsBlocked.WithLabelValues("quota").Inc()
			return nil, domain.QuotaExceeded(op, plan, active)
		}
	}

	job, err := s.store.CreateJob(ctx, &domain.JobPosting{
		ID:                     uuid.New(),
		RecruiterID:            recruiter.ID,
		Title:                  draft.Title,
		Description:            draft.ResolvedDescription(),
		AIGeneratedDescription: draft.AIGeneratedDescription,
		Status:                 domain.JobStatusActive,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create posting")
	}

	metrics.JobPostingsCreated.Inc()
	s.logger.Info("job posting created",
		"job_id", job.ID,
		"recruiter_id", recruiter.ID,
		"plan", plan.ID,
	)
	return job, nil
}

// Update edits an existing posting. Editing bypasses the subscription and
// quota gates; only draft validity and ownership are enforced.
func (s *JobService) Update(ctx context.Context, recruiter *domain.Recruiter, id uuid.UUID, draft domain.JobDraft) (*domain.JobPosting, error) {
	const op = "job.update"

	if err := draft.Validate(op); err != nil {
		return nil, err
	}

	job, err := s.getOwned(ctx, op, recruiter, id)
	if err != nil {
		return nil, err
	}

	job.Title = draft.Title
	job.Description = draft.ResolvedDescription()
	job.AIGeneratedDescription = draft.AIGeneratedDescription

	updated, err := s.store.UpdateJob(ctx, job)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update posting")
	}
	return updated, nil
}

// Get fetches a posting owned by the recruiter.
func (s *JobService) Get(ctx context.Context, recruiter *domain.Recruiter, id uuid.UUID) (*domain.JobPosting, error) {
	return s.getOwned(ctx, "job.get", recruiter, id)
}

// List returns the recruiter's postings, newest first.
func (s *JobService) List(ctx context.Context, recruiter *domain.Recruiter) ([]*domain.JobPosting, error) {
	const op = "job.list"

	jobs, err := s.store.ListJobsByRecruiter(ctx, recruiter.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list postings")
	}
	return jobs, nil
}

// Close marks a posting closed, releasing its quota slot.
func (s *JobService) Close(ctx context.Context, recruiter *domain.Recruiter, id uuid.UUID) error {
	const op = "job.close"

	if _, err := s.getOwned(ctx, op, recruiter, id); err != nil {
		return err
	}
	if err := s.store.CloseJob(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to close posting")
	}
	s.logger.Info("job posting closed", "job_id", id, "recruiter_id", recruiter.ID)
	return nil
}

// getOwned loads a posting and verifies ownership. Postings owned by
// someone else read as not found.
func (s *JobService) getOwned(ctx context.Context, op string, recruiter *domain.Recruiter, id uuid.UUID) (*domain.JobPosting, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "job posting", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load posting")
	}
	if job.RecruiterID != recruiter.ID {
		return nil, domain.NotFound(op, "job posting", id.String())
	}
	return job, nil
}
