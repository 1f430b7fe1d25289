// Package users is responsible for account management beyond authentication:
// the profile view, partial profile updates, account deletion with its file
// cleanup, and the admin-only account listing. The corresponding Express
// implementation kept these in the user controller next to the auth actions;
// here they form their own service so the auth package stays about
// credentials only.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/jobbee-go/apifilter"
	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/auth"
	"github.com/user/jobbee-go/uploads"
)

const pgUniqueViolation = "23505"

// userColumns is both the default projection and the strict allow-list of the
// admin listing. The password hash and the reset-token pair are never
// projectable, not even explicitly via `fields`.
var userColumns = []string{"id", "name", "email", "role", "created_at"}

// Service provides account-management operations.
type Service struct {
	db    *pgxpool.Pool
	files *uploads.Store
}

// NewService creates a new users Service. The upload store is needed because
// deleting an account also deletes the résumé files tied to it.
func NewService(db *pgxpool.Pool, files *uploads.Store) *Service {
	return &Service{db: db, files: files}
}

// GetProfile returns the authenticated user's own account view. Employers
// additionally get the postings they published, the way the original
// `getUserProfile` populated `jobPublished`.
func (s *Service) GetProfile(ctx context.Context, user *auth.User) (*Profile, error) {
	profile := &Profile{User: user}
	if user.Role != auth.RoleEmployer {
		return profile, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, title, slug, company, posting_date, last_date
		 FROM jobs WHERE user_id = $1 ORDER BY posting_date DESC`, user.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query published jobs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var j PublishedJob
		if err := rows.Scan(&j.ID, &j.Title, &j.Slug, &j.Company, &j.PostingDate, &j.LastDate); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan published job", err)
		}
		profile.PublishedJobs = append(profile.PublishedJobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate published jobs", err)
	}
	return profile, nil
}

// Update applies a partial profile change. Only the provided fields are
// written; an update that names no fields is a client error.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateUserRequest) (*auth.User, error) {
	setClauses, args := buildUserUpdate(req)
	if len(setClauses) == 0 {
		return nil, apperror.NewBadRequestError("no fields to update", nil)
	}

	args = append(args, userID)
	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d
		 RETURNING id, name, email, role, created_at`,
		strings.Join(setClauses, ", "), len(args))

	var user auth.User
	err := s.db.QueryRow(ctx, query, args...).
		Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError("email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return &user, nil
}

// buildUserUpdate renders the SET clauses for the fields present in the
// request. Emails are lowercased on the way in, matching registration.
func buildUserUpdate(req UpdateUserRequest) ([]string, []interface{}) {
	var setClauses []string
	var args []interface{}

	if req.Name != nil {
		args = append(args, *req.Name)
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", len(args)))
	}
	if req.Email != nil {
		args = append(args, strings.ToLower(*req.Email))
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", len(args)))
	}
	return setClauses, args
}

// Delete removes an account and everything hanging off it. The foreign keys
// cascade the rows (owned postings for employers, applications for users),
// but the résumé files on disk are not the database's to clean up: every
// résumé attached to the account's own applications, and every résumé
// applicants submitted to the account's postings, is deleted here first.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	rows, err := s.db.Query(ctx,
		`SELECT resume FROM job_applications
		 WHERE user_id = $1
		    OR job_id IN (SELECT id FROM jobs WHERE user_id = $1)`, userID)
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

	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
	}
	return nil
}

// List is the admin account listing, driven by the same query-parameter
// filter chain as the public job listing. The builder runs in strict mode:
// accounts carry credential material, so only the allow-listed columns may
// appear in filters or projections.
func (s *Service) List(ctx context.Context, params url.Values) ([]map[string]interface{}, error) {
	builder := apifilter.New("users", userColumns,
		apifilter.WithAllowedFields(userColumns...),
		apifilter.WithNumericFields("id")).
		Filter(params).
		LimitFields(params)
	if err := builder.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, builder.SelectSQL(), builder.Args()...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query users", err)
	}
	defer rows.Close()

	return apifilter.CollectRows(rows)
}

// AdminDelete removes an arbitrary account by id, with the same cascade and
// file cleanup as self-deletion.
func (s *Service) AdminDelete(ctx context.Context, id int64) error {
	return s.Delete(ctx, id)
}
