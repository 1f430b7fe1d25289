// Package jobs, domain model of a posting.
package jobs

import "time"

// Enumerated posting attributes. The spellings, including the historical
// "Bacholars" typo, are kept exactly as the original API published them:
// clients filter on these literal values.
const (
	JobTypePermanent  = "Permanent"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"
)

// Job is one posting. Latitude/longitude and the locality fields are derived
// from the free-form address by the geocoder at creation time; the slug is
// derived from the title. Both are recomputed on update.
type Job struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Description      string    `json:"description"`
	Email            string    `json:"email"`
	Address          string    `json:"address"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	FormattedAddress string    `json:"formattedAddress"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Zipcode          string    `json:"zipcode"`
	Country          string    `json:"country"`
	Company          string    `json:"company"`
	Industry         []string  `json:"industry"`
	JobType          string    `json:"jobType"`
	MinEducation     string    `json:"minEducation"`
	Experience       string    `json:"experience"`
	Positions        int       `json:"positions"`
	Salary           float64   `json:"salary"`
	PostingDate      time.Time `json:"postingDate"`
	LastDate         time.Time `json:"lastDate"`
	UserID           int64     `json:"userId"`
}

// Stats is the salary/demand aggregate for one search topic.
type Stats struct {
	TotalJobs    int64   `json:"totalJobs"`
	AvgPositions float64 `json:"avgPositions"`
	AvgSalary    float64 `json:"avgSalary"`
	MinSalary    float64 `json:"minSalary"`
	MaxSalary    float64 `json:"maxSalary"`
}

// Application records that a user applied to a posting with a stored résumé.
// The (job, user) pair is unique; re-applying replaces the résumé.
type Application struct {
	JobID     int64     `json:"jobId"`
	UserID    int64     `json:"userId"`
	Resume    string    `json:"resume"`
	AppliedAt time.Time `json:"appliedAt"`
}

// AppliedJob is the view of an application shown to the applicant: the
// application row joined with enough of the posting to recognise it.
type AppliedJob struct {
	JobID     int64     `json:"jobId"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Resume    string    `json:"resume"`
	AppliedAt time.Time `json:"appliedAt"`
}
