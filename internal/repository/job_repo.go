package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jumakrk/IST-MOBILE-APP/internal/model"

	"github.com/jackc/pgx/v5"
)

// JobRepository defines operations for job posting data
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id string) (*model.Job, error)
	FindAll(ctx context.Context) ([]model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id string) error
}

type jobRepository struct {
	db DB
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db DB) JobRepository {
	return &jobRepository{db: db}
}

const jobColumns = `id, title, company, location, description, job_type, posted_by, date_posted, application_deadline`

// Create inserts a new job posting
func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	sql := `INSERT INTO jobs (id, title, company, location, description, job_type, posted_by, date_posted, application_deadline)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, sql, job.ID, job.Title, job.Company, job.Location,
		job.Description, job.JobType, job.PostedBy, job.DatePosted, job.ApplicationDeadline)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// FindByID retrieves a job by its id
func (r *jobRepository) FindByID(ctx context.Context, id string) (*model.Job, error) {
	job := &model.Job{}
	sql := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.Description,
		&job.JobType, &job.PostedBy, &job.DatePosted, &job.ApplicationDeadline,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find job by ID: %w", err)
	}
	return job, nil
}

// FindAll retrieves every job posting, dropping rows that fail to scan so a
// single malformed document cannot break the listing.
func (r *jobRepository) FindAll(ctx context.Context) ([]model.Job, error) {
	sql := `SELECT ` + jobColumns + ` FROM jobs ORDER BY date_posted DESC`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		var j model.Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description,
			&j.JobType, &j.PostedBy, &j.DatePosted, &j.ApplicationDeadline); err != nil {
			continue // drop malformed row
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// Update rewrites the editable fields of a job posting
func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	sql := `UPDATE jobs SET title = $1, company = $2, location = $3, description = $4, application_deadline = $5
            WHERE id = $6`
	tag, err := r.db.Exec(ctx, sql, job.Title, job.Company, job.Location,
		job.Description, job.ApplicationDeadline, job.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a job posting by id
func (r *jobRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
