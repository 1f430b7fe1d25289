// Package jobs is responsible for the posting lifecycle: the filterable
// public listing, radius search around a postal code, per-topic statistics,
// creation/update/removal by employers, and the application flow with its
// stored résumé. The corresponding Express implementation split this between
// the jobs controller and Mongoose schema hooks (slug and geocoding); here
// those derivations live in the service next to the SQL they feed.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/jobbee-go/apifilter"
	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/auth"
	"github.com/user/jobbee-go/geocoder"
	"github.com/user/jobbee-go/uploads"
)

// metersPerMile converts the client-facing radius (miles, as in the original
// API's `distance / 3963` earth-radius division) into the meters
// earth_distance computes with.
const metersPerMile = 1609.344

// defaultPostingWindow is how long a posting accepts applications when the
// employer does not give an explicit closing date.
const defaultPostingWindow = 7 * 24 * time.Hour

// jobColumns is the default projection of the posting listing: every stored
// column except the generated full-text document vector, which is internal
// the way the Mongoose version field was.
var jobColumns = []string{
	"id", "title", "slug", "description", "email", "address",
	"latitude", "longitude", "formatted_address", "city", "state", "zipcode", "country",
	"company", "industry", "job_type", "min_education", "experience",
	"positions", "salary", "posting_date", "last_date", "user_id",
}

// numericJobColumns declares which filterable columns compare numerically.
// Values against any other column bind as text, zipcode included.
var numericJobColumns = []string{"id", "latitude", "longitude", "positions", "salary", "user_id"}

// Service provides posting operations.
type Service struct {
	db    *pgxpool.Pool
	geo   geocoder.Geocoder
	files *uploads.Store
}

// NewService creates a new jobs Service with its collaborators: the pool, the
// geocoder that resolves posting addresses, and the résumé store.
func NewService(db *pgxpool.Pool, geo geocoder.Geocoder, files *uploads.Store) *Service {
	return &Service{db: db, geo: geo, files: files}
}

// List runs the public posting listing through the full query-parameter
// chain: filter terms, projection, free-text search.
func (s *Service) List(ctx context.Context, params url.Values) ([]map[string]interface{}, error) {
	builder := apifilter.New("jobs", jobColumns, apifilter.WithNumericFields(numericJobColumns...)).
		Filter(params).
		LimitFields(params).
		Search(params)
	return s.runListing(ctx, builder)
}

// InRadius lists postings within `distanceMiles` of a postal code. The code
// is geocoded to a point and the constraint is evaluated on the stored
// coordinates; the regular filter and projection parameters still apply on
// top of it.
func (s *Service) InRadius(ctx context.Context, zipcode string, distanceMiles float64, params url.Values) ([]map[string]interface{}, error) {
	if distanceMiles <= 0 {
		return nil, apperror.NewBadRequestError("distance must be a positive number of miles", nil)
	}

	loc, err := s.geo.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	builder := apifilter.New("jobs", jobColumns, apifilter.WithNumericFields(numericJobColumns...)).
		Filter(params).
		LimitFields(params).
		Where("earth_distance(ll_to_earth(latitude, longitude), ll_to_earth(?, ?)) <= ?",
			loc.Latitude, loc.Longitude, distanceMiles*metersPerMile)
	return s.runListing(ctx, builder)
}

// runListing executes a finished builder and collects the rows.
func (s *Service) runListing(ctx context.Context, builder *apifilter.Builder) ([]map[string]interface{}, error) {
	if err := builder.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, builder.SelectSQL(), builder.Args()...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query jobs", err)
	}
	defer rows.Close()

	return apifilter.CollectRows(rows)
}

// Create stores a new posting for the given employer. The slug is derived
// from the title and the coordinates plus locality fields from geocoding the
// free-form address, as the original schema hooks did on save.
func (s *Service) Create(ctx context.Context, user *auth.User, req CreateJobRequest) (*Job, error) {
	job, err := s.buildJob(ctx, req, time.Now().Add(defaultPostingWindow))
	if err != nil {
		return nil, err
	}
	job.UserID = user.ID

	query := `INSERT INTO jobs
	          (title, slug, description, email, address,
	           latitude, longitude, formatted_address, city, state, zipcode, country,
	           company, industry, job_type, min_education, experience,
	           positions, salary, last_date, user_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	          RETURNING id, posting_date`
	err = s.db.QueryRow(ctx, query,
		job.Title, job.Slug, job.Description, job.Email, job.Address,
		job.Latitude, job.Longitude, job.FormattedAddress, job.City, job.State, job.Zipcode, job.Country,
		job.Company, job.Industry, job.JobType, job.MinEducation, job.Experience,
		job.Positions, job.Salary, job.LastDate, job.UserID).
		Scan(&job.ID, &job.PostingDate)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create job", err)
	}
	return job, nil
}

// GetByIDAndSlug fetches one posting addressed by both id and slug, the
// double-keyed lookup the original single-posting route used.
func (s *Service) GetByIDAndSlug(ctx context.Context, id int64, slugParam string) (*Job, error) {
	query := selectJobQuery + ` WHERE id = $1 AND slug = $2`
	return s.scanJob(s.db.QueryRow(ctx, query, id, slugParam),
		fmt.Sprintf("job with id %d and slug '%s' not found", id, slugParam))
}

// Update replaces a posting's editable fields, rederiving the slug and the
// geocoded location. Only the owner or an admin may do this. An update that
// carries no closing date keeps the posting's current one rather than
// restarting the window.
func (s *Service) Update(ctx context.Context, user *auth.User, id int64, req CreateJobRequest) (*Job, error) {
	existing, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(user, existing); err != nil {
		return nil, err
	}

	job, err := s.buildJob(ctx, req, existing.LastDate)
	if err != nil {
		return nil, err
	}
	job.ID = existing.ID
	job.UserID = existing.UserID
	job.PostingDate = existing.PostingDate

	query := `UPDATE jobs SET
	          title = $1, slug = $2, description = $3, email = $4, address = $5,
	          latitude = $6, longitude = $7, formatted_address = $8, city = $9, state = $10, zipcode = $11, country = $12,
	          company = $13, industry = $14, job_type = $15, min_education = $16, experience = $17,
	          positions = $18, salary = $19, last_date = $20
	          WHERE id = $21`
	_, err = s.db.Exec(ctx, query,
		job.Title, job.Slug, job.Description, job.Email, job.Address,
		job.Latitude, job.Longitude, job.FormattedAddress, job.City, job.State, job.Zipcode, job.Country,
		job.Company, job.Industry, job.JobType, job.MinEducation, job.Experience,
		job.Positions, job.Salary, job.LastDate, job.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update job", err)
	}
	return job, nil
}

// Delete removes a posting. Only the owner or an admin may do this; the
// applicants' stored résumé files are deleted along with the rows the foreign
// key cascades away.
func (s *Service) Delete(ctx context.Context, user *auth.User, id int64) error {
	existing, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwnership(user, existing); err != nil {
		return err
	}

	rows, err := s.db.Query(ctx, `SELECT resume FROM job_applications WHERE job_id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to query résumés for cleanup", err)
	}
	defer rows.Close()

	var resumes []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return apperror.NewDatabaseError("failed to scan résumé path", err)
		}
		resumes = append(resumes, path)
	}
	if err := rows.Err(); err != nil {
		return apperror.NewDatabaseError("failed to iterate résumé paths", err)
	}

	for _, path := range resumes {
		if err := s.files.Delete(path); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
		return apperror.NewDatabaseError("failed to delete job", err)
	}
	return nil
}

// Stats aggregates demand and salary figures over the postings matching a
// search topic. A topic nothing matches is reported as not found rather than
// a row of zeroes.
func (s *Service) Stats(ctx context.Context, topic string) (*Stats, error) {
	query := `SELECT count(*),
	                 coalesce(avg(positions), 0),
	                 coalesce(avg(salary), 0),
	                 coalesce(min(salary), 0),
	                 coalesce(max(salary), 0)
	          FROM jobs
	          WHERE search_vector @@ plainto_tsquery('english', $1)`

	var stats Stats
	err := s.db.QueryRow(ctx, query, topic).
		Scan(&stats.TotalJobs, &stats.AvgPositions, &stats.AvgSalary, &stats.MinSalary, &stats.MaxSalary)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to aggregate job stats", err)
	}
	if stats.TotalJobs == 0 {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("no stats found for - %s", topic), nil)
	}
	return &stats, nil
}

// Apply records the authenticated user's application to a posting, storing
// the uploaded résumé. Re-applying replaces the previous résumé; a posting
// past its closing date no longer accepts applications.
func (s *Service) Apply(ctx context.Context, user *auth.User, jobID int64, filename string, size int64, r io.Reader) (*Application, error) {
	var lastDate time.Time
	err := s.db.QueryRow(ctx, `SELECT last_date FROM jobs WHERE id = $1`, jobID).Scan(&lastDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("job with id %d not found", jobID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to query job", err)
	}
	if time.Now().After(lastDate) {
		return nil, apperror.NewValidationError("you can not apply to this job, the date is over", nil)
	}

	if err := s.files.CheckFile(filename, size); err != nil {
		return nil, err
	}

	// One stored file per (user, job); the extension follows the upload so a
	// re-application with the other accepted format does not collide with a
	// stale file.
	var oldPath *string
	err = s.db.QueryRow(ctx,
		`SELECT resume FROM job_applications WHERE job_id = $1 AND user_id = $2`,
		jobID, user.ID).Scan(&oldPath)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewDatabaseError("failed to query existing application", err)
	}

	name := fmt.Sprintf("user_%d_job_%d%s", user.ID, jobID, filepath.Ext(filename))
	path, err := s.files.Save(name, r)
	if err != nil {
		return nil, err
	}

	app := &Application{JobID: jobID, UserID: user.ID, Resume: path}
	err = s.db.QueryRow(ctx,
		`INSERT INTO job_applications (job_id, user_id, resume)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id, user_id)
		 DO UPDATE SET resume = EXCLUDED.resume, applied_at = now()
		 RETURNING applied_at`,
		app.JobID, app.UserID, app.Resume).Scan(&app.AppliedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to store application", err)
	}

	if oldPath != nil && *oldPath != path {
		if err := s.files.Delete(*oldPath); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// AppliedJobs lists the postings the user has applied to, newest first.
func (s *Service) AppliedJobs(ctx context.Context, userID int64) ([]AppliedJob, error) {
	rows, err := s.db.Query(ctx,
		`SELECT a.job_id, j.title, j.company, a.resume, a.applied_at
		 FROM job_applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.user_id = $1
		 ORDER BY a.applied_at DESC`, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query applied jobs", err)
	}
	defer rows.Close()

	applied := make([]AppliedJob, 0)
	for rows.Next() {
		var a AppliedJob
		if err := rows.Scan(&a.JobID, &a.Title, &a.Company, &a.Resume, &a.AppliedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan applied job", err)
		}
		applied = append(applied, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate applied jobs", err)
	}
	return applied, nil
}

// --- Derivation helpers ---

// buildJob turns a validated request into a storable posting: slug from the
// title, location from the geocoded address, defaults filled in.
// defaultLastDate is the closing date used when the request carries none: a
// fresh window on create, the posting's current date on update.
func (s *Service) buildJob(ctx context.Context, req CreateJobRequest, defaultLastDate time.Time) (*Job, error) {
	loc, err := s.geo.Geocode(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	job := &Job{
		Title:            req.Title,
		Slug:             slug.Make(req.Title),
		Description:      req.Description,
		Email:            req.Email,
		Address:          req.Address,
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		FormattedAddress: loc.FormattedAddress,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		Country:          loc.Country,
		Company:          req.Company,
		Industry:         req.Industry,
		JobType:          req.JobType,
		MinEducation:     req.MinEducation,
		Experience:       req.Experience,
		Positions:        req.Positions,
		Salary:           req.Salary,
	}
	if job.Positions == 0 {
		job.Positions = 1
	}
	if req.LastDate != nil {
		job.LastDate = *req.LastDate
	} else {
		job.LastDate = defaultLastDate
	}
	return job, nil
}

// checkOwnership allows the posting's owner and admins through.
func checkOwnership(user *auth.User, job *Job) error {
	if job.UserID != user.ID && user.Role != auth.RoleAdmin {
		return apperror.NewUnauthorizedError(
			fmt.Sprintf("user %d is not allowed to modify this job", user.ID), nil)
	}
	return nil
}

// --- Database helpers ---

const selectJobQuery = `SELECT id, title, slug, description, email, address,
       latitude, longitude, formatted_address, city, state, zipcode, country,
       company, industry, job_type, min_education, experience,
       positions, salary, posting_date, last_date, user_id
FROM jobs`

func (s *Service) getByID(ctx context.Context, id int64) (*Job, error) {
	query := selectJobQuery + ` WHERE id = $1`
	return s.scanJob(s.db.QueryRow(ctx, query, id), fmt.Sprintf("job with id %d not found", id))
}

// scanJob scans one posting row, translating pgx.ErrNoRows into a
// NotFoundError with the given message.
func (s *Service) scanJob(row pgx.Row, notFoundMsg string) (*Job, error) {
	var job Job
	err := row.Scan(
		&job.ID, &job.Title, &job.Slug, &job.Description, &job.Email, &job.Address,
		&job.Latitude, &job.Longitude, &job.FormattedAddress, &job.City, &job.State, &job.Zipcode, &job.Country,
		&job.Company, &job.Industry, &job.JobType, &job.MinEducation, &job.Experience,
		&job.Positions, &job.Salary, &job.PostingDate, &job.LastDate, &job.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(notFoundMsg, nil)
		}
		return nil, apperror.NewDatabaseError("failed to query job", err)
	}
	return &job, nil
}
