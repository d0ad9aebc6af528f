package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jumakrk/IST-MOBILE-APP/internal/model"
	"github.com/jumakrk/IST-MOBILE-APP/internal/notify"
	"github.com/jumakrk/IST-MOBILE-APP/internal/repository"
	"github.com/jumakrk/IST-MOBILE-APP/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrMissingFields = errors.New("please fill all fields")
)

// JobService defines operations for job postings. Every successful write
// publishes on the refresh bus so open list views refetch.
type JobService interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	CreateJob(ctx context.Context, postedBy string, req model.CreateJobRequest) (*model.Job, error)
	UpdateJob(ctx context.Context, id string, req model.UpdateJobRequest) (*model.Job, error)
	DeleteJob(ctx context.Context, id string) error
	Refresh() *notify.Bus
}

type jobService struct {
	repo    repository.JobRepository
	refresh *notify.Bus
	log     *logger.Logger
}

// NewJobService creates a new JobService
func NewJobService(repo repository.JobRepository, refresh *notify.Bus, log *logger.Logger) JobService {
	return &jobService{repo: repo, refresh: refresh, log: log}
}

// Refresh exposes the shared refresh trigger.
func (s *jobService) Refresh() *notify.Bus {
	return s.refresh
}

// ListJobs returns all job postings. Malformed rows are already dropped by
// the repository; the result is never nil.
func (s *jobService) ListJobs(ctx context.Context) ([]model.Job, error) {
	jobs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob retrieves a single job by id
func (s *jobService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// CreateJob validates the posting form, stamps the posting date and stores
// the job under a fresh id.
func (s *jobService) CreateJob(ctx context.Context, postedBy string, req model.CreateJobRequest) (*model.Job, error) {
	if hasEmptyField(req.Title, req.Company, req.Location, req.Description, req.JobType, req.ApplicationDeadline) {
		return nil, ErrMissingFields
	}

	job := &model.Job{
		ID:                  uuid.NewString(),
		Title:               req.Title,
		Company:             req.Company,
		Location:            req.Location,
		Description:         req.Description,
		JobType:             req.JobType,
		PostedBy:            postedBy,
		DatePosted:          time.Now().Format("2006-01-02"),
		ApplicationDeadline: req.ApplicationDeadline,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.log.Info().Str("job_id", job.ID).Str("posted_by", postedBy).Msg("job posted")
	s.refresh.Publish()
	return job, nil
}

// UpdateJob rewrites the editable fields of an existing posting.
func (s *jobService) UpdateJob(ctx context.Context, id string, req model.UpdateJobRequest) (*model.Job, error) {
	if hasEmptyField(req.Title, req.Company, req.Location, req.Description, req.ApplicationDeadline) {
		return nil, ErrMissingFields
	}

	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find job for update: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	job.Title = req.Title
	job.Company = req.Company
	job.Location = req.Location
	job.Description = req.Description
	job.ApplicationDeadline = req.ApplicationDeadline

	if err := s.repo.Update(ctx, job); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	s.refresh.Publish()
	return job, nil
}

// DeleteJob removes a posting by id
func (s *jobService) DeleteJob(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}

	s.log.Info().Str("job_id", id).Msg("job deleted")
	s.refresh.Publish()
	return nil
}

func hasEmptyField(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}
