package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/jumakrk/IST-MOBILE-APP/internal/model"
	"github.com/jumakrk/IST-MOBILE-APP/internal/service"

	"github.com/gin-gonic/gin"
)

// JobHandler handles job posting requests
type JobHandler struct {
	jobs service.JobService
	auth service.AuthService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobs service.JobService, auth service.AuthService) *JobHandler {
	return &JobHandler{jobs: jobs, auth: auth}
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.ListJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve jobs"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all fields"})
		return
	}

	// postedBy is the denormalized username of the posting admin.
	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve posting user"})
		return
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), user.Username, req)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all fields"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post job"})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req model.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all fields"})
		return
	}

	job, err := h.jobs.UpdateJob(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all fields"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job"})
		}
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.jobs.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

// StreamRefresh streams the shared refresh trigger as server-sent events so
// open list views know to refetch after any job write.
func (h *JobHandler) StreamRefresh(c *gin.Context) {
	ch := h.jobs.Refresh().Subscribe()
	defer h.jobs.Refresh().Unsubscribe(ch)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case _, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("refresh", "jobs")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// RegisterJobRoutes registers job routes. Reading requires a signed-in user,
// writing requires an admin.
func (h *JobHandler) RegisterJobRoutes(rg *gin.RouterGroup, jwtAuthMW, adminMW gin.HandlerFunc) {
	jobGroup := rg.Group("/jobs", jwtAuthMW)
	{
		jobGroup.GET("", h.ListJobs)
		jobGroup.GET("/refresh", h.StreamRefresh)
		jobGroup.GET("/:id", h.GetJob)

		adminGroup := jobGroup.Group("", adminMW)
		{
			adminGroup.POST("", h.CreateJob)
			adminGroup.PUT("/:id", h.UpdateJob)
			adminGroup.DELETE("/:id", h.DeleteJob)
		}
	}
}
