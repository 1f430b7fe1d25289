// Package auth, as part of the authentication module.
// This file, `models.go`, defines the User entity shared by the auth flows and
// by the other modules (users, jobs) that need to know who is acting.
package auth

import "time"

// Role names a principal may hold. The route allow-lists reference these.
const (
	RoleUser     = "user"
	RoleEmployer = "employer"
	RoleAdmin    = "admin"
)

// User represents a principal in the system.
// The `json:"-"` tags keep the credential material out of every API response:
// the hashed password and the reset-token pair are never serialized.
type User struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	HashedPassword string     `json:"-"`
	ResetToken     *string    `json:"-"` // sha256 hash of the issued reset token, never the raw value
	ResetExpire    *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}
