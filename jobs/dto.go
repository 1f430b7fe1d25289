// Package jobs, as part of the postings module.
// This file, `dto.go`, defines the request and response shapes of the posting
// routes. The validator tags carry the same closed vocabularies the original
// Mongoose schema enforced with enum validators, spelling included.
package jobs

import "time"

// CreateJobRequest carries a new posting. Update reuses the same shape: like
// the original API, an update replaces the posting's editable fields rather
// than patching them one by one. LastDate is the exception: absent on create
// it defaults to a fresh window, absent on update it keeps the posting's
// current closing date.
type CreateJobRequest struct {
	Title        string     `json:"title" validate:"required,max=100"`
	Description  string     `json:"description" validate:"required,max=1000"`
	Email        string     `json:"email" validate:"required,email"`
	Address      string     `json:"address" validate:"required"`
	Company      string     `json:"company" validate:"required"`
	Industry     []string   `json:"industry" validate:"required,min=1,dive,oneof=Business 'Information Technology' Banking 'Education/Training' Telecommunication Others"`
	JobType      string     `json:"jobType" validate:"required,oneof=Permanent Contract Internship"`
	MinEducation string     `json:"minEducation" validate:"required,oneof='Secondary School' Diploma Bacholars Masters Phd"`
	Experience   string     `json:"experience" validate:"required,oneof='No Experience' '1-2 Years' '2-3 Years' '4-5 Years' '5 Years+'"`
	Positions    int        `json:"positions" validate:"omitempty,min=1"`
	Salary       float64    `json:"salary" validate:"required,min=0"`
	LastDate     *time.Time `json:"lastDate" validate:"omitempty"`
}

// JobResponse wraps a single posting in the response envelope.
type JobResponse struct {
	Success bool `json:"success"`
	Data    *Job `json:"data"`
}

// ListResponse wraps a posting listing. Data rows are maps because the
// projection is chosen per request via the `fields` parameter.
type ListResponse struct {
	Success bool                     `json:"success"`
	Results int                      `json:"results"`
	Data    []map[string]interface{} `json:"data"`
}

// StatsResponse wraps the per-topic aggregate.
type StatsResponse struct {
	Success bool   `json:"success"`
	Data    *Stats `json:"data"`
}

// ApplicationResponse wraps the stored application after a successful apply.
type ApplicationResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *Application `json:"data"`
}

// AppliedJobsResponse wraps the applicant's own application listing.
type AppliedJobsResponse struct {
	Success bool         `json:"success"`
	Results int          `json:"results"`
	Data    []AppliedJob `json:"data"`
}

// MessageResponse is the envelope for operations that only report an outcome.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
