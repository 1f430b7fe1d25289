// Package auth is responsible for handling authentication and authorization
// logic: registration, login, credential issuance, password changes and the
// password-reset token lifecycle. The corresponding Express implementation
// spread this over the user controller and Mongoose schema methods; here it
// forms one service with its SQL kept local, in the style of our other ports.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	// Library for password hashing using bcrypt.
	"golang.org/x/crypto/bcrypt"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/config"
	"github.com/user/jobbee-go/mailer"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// resetStore is the persistence seam of the reset-token lifecycle. The pgx
// implementation keeps the expiry and single-use checks in SQL; tests
// substitute a fake with the same contract, like the middleware does with
// PrincipalStore.
type resetStore interface {
	// saveResetToken arms the lifecycle for one principal.
	saveResetToken(ctx context.Context, userID int64, hashedToken string, expire time.Time) error
	// clearResetToken disarms it again; the compensation after a failed send.
	clearResetToken(ctx context.Context, userID int64) error
	// redeemResetToken consumes an unexpired token matching the hash in one
	// step: the password is replaced and the token pair cleared. A token that
	// is unknown, already consumed or expired yields a NotFoundError.
	redeemResetToken(ctx context.Context, hashedToken, hashedPassword string) (*User, error)
}

// Service provides authentication-related operations.
type Service struct {
	db          *pgxpool.Pool
	authCfg     *config.AuthConfig
	mail        mailer.Mailer
	resetTokens resetStore
}

// NewService creates a new auth Service. Dependencies are injected explicitly:
// the connection pool, the auth configuration (signing secret and expiry
// windows, read once at startup) and the email collaborator.
func NewService(db *pgxpool.Pool, authCfg *config.AuthConfig, mail mailer.Mailer) *Service {
	return &Service{db: db, authCfg: authCfg, mail: mail, resetTokens: &pgResetStore{db: db}}
}

// Register creates a new principal and issues its first credential.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	user := &User{
		Name: req.Name,
		// Emails are stored lowercase so the uniqueness constraint is
		// effectively case-insensitive.
		Email:          strings.ToLower(req.Email),
		Role:           role,
		HashedPassword: string(hashedPassword),
	}

	query := `INSERT INTO users (name, email, role, password)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`
	err = s.db.QueryRow(ctx, query, user.Name, user.Email, user.Role, user.HashedPassword).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, "", apperror.NewConflictError("email already exists", nil)
		}
		return nil, "", apperror.NewDatabaseError("failed to create user", err)
	}

	token, err := signToken(user.ID, s.authCfg)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a principal by email and password and issues a credential.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	user, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Do not reveal whether the email or the password was wrong.
			return nil, "", apperror.NewAuthError("invalid email or password", nil)
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, "", apperror.NewAuthError("invalid email or password", nil)
	}

	token, err := signToken(user.ID, s.authCfg)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUserByID retrieves a principal by id. The middleware uses this to resolve
// a verified credential; a missing row means the account was deleted after the
// token was issued, and callers translate that into an authentication error.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, name, email, role, password, reset_password_token, reset_password_expire, created_at
	          FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, id), fmt.Sprintf("user with id %d not found", id))
}

// UpdatePassword changes the password of a logged-in principal after verifying
// the old one, and issues a fresh credential.
func (s *Service) UpdatePassword(ctx context.Context, userID int64, req UpdatePasswordRequest) (string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.OldPassword)); err != nil {
		return "", apperror.NewAuthError("invalid old password", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.NewInternalError("failed to hash password", err)
	}

	if _, err := s.db.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, string(hashed), userID); err != nil {
		return "", apperror.NewDatabaseError("failed to update password", err)
	}

	return signToken(userID, s.authCfg)
}

// ForgotPassword starts the reset-token lifecycle for the account registered
// under `email`. Only the sha256 hash of the token is persisted, with a bounded
// expiry; the raw value goes out by email exactly once. If the email send
// fails, the stored hash is cleared again so a half-delivered reset can never
// be redeemed later — losing the token is recoverable, leaving it armed with
// no owner is not.
//
// `buildResetURL` renders the raw token into the link mailed to the user; the
// handler supplies it since only the HTTP layer knows the external host.
func (s *Service) ForgotPassword(ctx context.Context, email string, buildResetURL func(rawToken string) string) error {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		return err // NotFoundError when no account exists for the address
	}
	return s.issueResetToken(ctx, user, buildResetURL)
}

// issueResetToken arms the lifecycle for an already resolved principal and
// mails the link.
func (s *Service) issueResetToken(ctx context.Context, user *User, buildResetURL func(rawToken string) string) error {
	rawToken, hashedToken, err := newResetToken()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.authCfg.ResetTokenTTL)

	if err := s.resetTokens.saveResetToken(ctx, user.ID, hashedToken, expiry); err != nil {
		return err
	}

	message := fmt.Sprintf(
		"Your password reset link is as follows:\n\n%s\n\nIf you did not request this, simply ignore this email.",
		buildResetURL(rawToken),
	)

	if err := s.mail.Send(user.Email, "Jobbee API - Password Reset Recovery", message); err != nil {
		// Compensating action: the issued token must not outlive the failed
		// notification.
		if clearErr := s.resetTokens.clearResetToken(ctx, user.ID); clearErr != nil {
			// Keep the root cause in the message; the clear failure alone
			// would hide why the compensation ran at all.
			return apperror.NewDatabaseError(
				fmt.Sprintf("failed to clear reset token after send failure: %v", err), clearErr)
		}
		return err
	}

	return nil
}

// ResetPassword completes the reset lifecycle: the presented raw token must
// hash to the stored value AND the stored expiry must not have elapsed. On
// success the password is replaced, the token pair is cleared (single use)
// and a fresh credential is issued.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) (*User, string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.resetTokens.redeemResetToken(ctx, hashResetToken(rawToken), string(hashed))
	if err != nil {
		if apperror.IsNotFound(err) {
			// Covers all three terminal cases: unknown token, consumed token
			// (cleared on first use) and expired token with a matching hash.
			return nil, "", apperror.NewValidationError("password reset token is invalid or has expired", nil)
		}
		return nil, "", err
	}

	token, err := signToken(user.ID, s.authCfg)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// --- Reset-token helpers ---

// newResetToken generates 20 random bytes and returns both the raw hex value
// (mailed to the user) and its sha256 hash (the only form ever persisted).
func newResetToken() (raw string, hashed string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", apperror.NewInternalError("failed to generate reset token", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, hashResetToken(raw), nil
}

// hashResetToken maps a raw reset token to its stored representation.
func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// --- Database helpers ---

// pgResetStore is the pgx-backed resetStore. The redeem statement is one
// UPDATE so matching, consuming and replacing the password happen atomically:
// two concurrent presentations of the same token cannot both succeed.
type pgResetStore struct {
	db *pgxpool.Pool
}

func (p *pgResetStore) saveResetToken(ctx context.Context, userID int64, hashedToken string, expire time.Time) error {
	if _, err := p.db.Exec(ctx,
		`UPDATE users SET reset_password_token = $1, reset_password_expire = $2 WHERE id = $3`,
		hashedToken, expire, userID); err != nil {
		return apperror.NewDatabaseError("failed to store reset token", err)
	}
	return nil
}

func (p *pgResetStore) clearResetToken(ctx context.Context, userID int64) error {
	if _, err := p.db.Exec(ctx,
		`UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1`,
		userID); err != nil {
		return apperror.NewDatabaseError("failed to clear reset token", err)
	}
	return nil
}

func (p *pgResetStore) redeemResetToken(ctx context.Context, hashedToken, hashedPassword string) (*User, error) {
	query := `UPDATE users
	          SET password = $2, reset_password_token = NULL, reset_password_expire = NULL
	          WHERE reset_password_token = $1 AND reset_password_expire > now()
	          RETURNING id, name, email, role, created_at`

	var user User
	err := p.db.QueryRow(ctx, query, hashedToken, hashedPassword).
		Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("no redeemable reset token", nil)
		}
		return nil, apperror.NewDatabaseError("failed to redeem reset token", err)
	}
	return &user, nil
}

func (s *Service) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, name, email, role, password, reset_password_token, reset_password_expire, created_at
	          FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, strings.ToLower(email)),
		fmt.Sprintf("no user found for email '%s'", strings.ToLower(email)))
}

// scanUser scans one user row, translating pgx.ErrNoRows into a NotFoundError
// with the given message.
func (s *Service) scanUser(row pgx.Row, notFoundMsg string) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.HashedPassword,
		&user.ResetToken,
		&user.ResetExpire,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(notFoundMsg, nil)
		}
		return nil, apperror.NewDatabaseError("failed to query user", err)
	}
	return &user, nil
}
