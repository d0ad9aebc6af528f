package model

// Job represents a job posting. Dates are kept as yyyy-mm-dd strings because
// that is what the posting form submits and the listing screens render.
type Job struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Company             string `json:"company"`
	Location            string `json:"location"`
	Description         string `json:"description"`
	JobType             string `json:"jobType"`
	PostedBy            string `json:"postedBy"` // denormalized username of the posting admin
	DatePosted          string `json:"datePosted"`
	ApplicationDeadline string `json:"applicationDeadline"`
}

// CreateJobRequest is used for posting a new job
type CreateJobRequest struct {
	Title               string `json:"title" binding:"required"`
	Company             string `json:"company" binding:"required"`
	Location            string `json:"location" binding:"required"`
	Description         string `json:"description" binding:"required"`
	JobType             string `json:"jobType" binding:"required"`
	ApplicationDeadline string `json:"applicationDeadline" binding:"required"`
}

// UpdateJobRequest carries the fields the edit form submits. The form always
// sends the full set, so none of these are optional.
type UpdateJobRequest struct {
	Title               string `json:"title" binding:"required"`
	Company             string `json:"company" binding:"required"`
	Location            string `json:"location" binding:"required"`
	Description         string `json:"description" binding:"required"`
	ApplicationDeadline string `json:"applicationDeadline" binding:"required"`
}
