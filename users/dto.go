// Package users, as part of the account-management module.
// This file, `dto.go`, defines the request and response shapes of the account
// routes. Responses keep the `{success, data}` envelope of the Express
// implementation this port follows.
package users

import (
	"time"

	"github.com/user/jobbee-go/auth"
)

// UpdateUserRequest carries a partial profile update. Nil fields are left
// untouched; at least one must be set.
type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// PublishedJob is the trimmed view of a posting shown on an employer's own
// profile. The full posting shape lives in the jobs module; the profile only
// needs enough to link back to it.
type PublishedJob struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Company     string    `json:"company"`
	PostingDate time.Time `json:"postingDate"`
	LastDate    time.Time `json:"lastDate"`
}

// Profile is the authenticated user's own view of their account. For
// employers it also lists the postings they published.
type Profile struct {
	User          *auth.User     `json:"user"`
	PublishedJobs []PublishedJob `json:"publishedJobs,omitempty"`
}

// ProfileResponse wraps a Profile in the response envelope.
type ProfileResponse struct {
	Success bool     `json:"success"`
	Data    *Profile `json:"data"`
}

// UserResponse wraps a single account in the response envelope.
type UserResponse struct {
	Success bool       `json:"success"`
	Data    *auth.User `json:"data"`
}

// ListResponse wraps the admin account listing. Data rows are maps because
// the projection is chosen per request via the `fields` parameter.
type ListResponse struct {
	Success bool                     `json:"success"`
	Results int                      `json:"results"`
	Data    []map[string]interface{} `json:"data"`
}

// MessageResponse is the envelope for operations that only report an outcome.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
