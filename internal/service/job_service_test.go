package service

import (
	"context"
	"testing"
	"time"

	"github.com/jumakrk/IST-MOBILE-APP/internal/model"
	"github.com/jumakrk/IST-MOBILE-APP/internal/notify"
	"github.com/jumakrk/IST-MOBILE-APP/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJobRepo is an in-memory JobRepository.
type fakeJobRepo struct {
	jobs []*model.Job
}

func (f *fakeJobRepo) Create(_ context.Context, job *model.Job) error {
	copied := *job
	f.jobs = append(f.jobs, &copied)
	return nil
}

func (f *fakeJobRepo) FindByID(_ context.Context, id string) (*model.Job, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			copied := *j
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeJobRepo) FindAll(_ context.Context) ([]model.Job, error) {
	out := []model.Job{}
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeJobRepo) Update(_ context.Context, job *model.Job) error {
	for i, j := range f.jobs {
		if j.ID == job.ID {
			copied := *job
			f.jobs[i] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeJobRepo) Delete(_ context.Context, id string) error {
	for i, j := range f.jobs {
		if j.ID == id {
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

var _ repository.JobRepository = (*fakeJobRepo)(nil)

func newJobFixture() (JobService, *fakeJobRepo) {
	repo := &fakeJobRepo{}
	return NewJobService(repo, notify.NewBus(), testLogger()), repo
}

func validCreateJobRequest() model.CreateJobRequest {
	return model.CreateJobRequest{
		Title:               "Backend Engineer",
		Company:             "IST",
		Location:            "Kampala",
		Description:         "Build APIs",
		JobType:             "Full-time",
		ApplicationDeadline: "2026-12-31",
	}
}

func TestCreateJob(t *testing.T) {
	svc, _ := newJobFixture()
	ch := svc.Refresh().Subscribe()
	defer svc.Refresh().Unsubscribe(ch)

	job, err := svc.CreateJob(context.Background(), "Jane Doe", validCreateJobRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "IST", job.Company)
	assert.Equal(t, "Kampala", job.Location)
	assert.Equal(t, "Jane Doe", job.PostedBy)
	assert.Equal(t, time.Now().Format("2006-01-02"), job.DatePosted)

	select {
	case <-ch:
	default:
		t.Fatal("create did not publish a refresh")
	}

	listed, err := svc.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, job.ID, listed[0].ID)
}

func TestCreateJob_MissingFields(t *testing.T) {
	svc, _ := newJobFixture()
	ch := svc.Refresh().Subscribe()
	defer svc.Refresh().Unsubscribe(ch)

	req := validCreateJobRequest()
	req.Location = "  "
	job, err := svc.CreateJob(context.Background(), "Jane Doe", req)

	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Nil(t, job)
	select {
	case <-ch:
		t.Fatal("rejected create must not publish a refresh")
	default:
	}
}

func TestGetJob(t *testing.T) {
	svc, _ := newJobFixture()
	created, err := svc.CreateJob(context.Background(), "Jane Doe", validCreateJobRequest())
	require.NoError(t, err)

	job, err := svc.GetJob(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, job.Title)

	_, err = svc.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestUpdateJob(t *testing.T) {
	svc, _ := newJobFixture()
	created, err := svc.CreateJob(context.Background(), "Jane Doe", validCreateJobRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateJob(context.Background(), created.ID, model.UpdateJobRequest{
		Title:               "Senior Backend Engineer",
		Company:             created.Company,
		Location:            created.Location,
		Description:         created.Description,
		ApplicationDeadline: created.ApplicationDeadline,
	})
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", updated.Title)
	// Immutable fields survive the rewrite.
	assert.Equal(t, created.PostedBy, updated.PostedBy)
	assert.Equal(t, created.DatePosted, updated.DatePosted)

	got, err := svc.GetJob(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", got.Title)
}

func TestUpdateJob_NotFound(t *testing.T) {
	svc, _ := newJobFixture()

	_, err := svc.UpdateJob(context.Background(), "missing", model.UpdateJobRequest{
		Title:               "x",
		Company:             "x",
		Location:            "x",
		Description:         "x",
		ApplicationDeadline: "2026-12-31",
	})

	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestDeleteJob(t *testing.T) {
	svc, _ := newJobFixture()
	created, err := svc.CreateJob(context.Background(), "Jane Doe", validCreateJobRequest())
	require.NoError(t, err)

	ch := svc.Refresh().Subscribe()
	defer svc.Refresh().Unsubscribe(ch)

	require.NoError(t, svc.DeleteJob(context.Background(), created.ID))

	select {
	case <-ch:
	default:
		t.Fatal("delete did not publish a refresh")
	}

	listed, err := svc.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorIs(t, svc.DeleteJob(context.Background(), created.ID), ErrJobNotFound)
}
