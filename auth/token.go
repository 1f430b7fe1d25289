// Package auth, credential issuance and verification.
// A credential is an HS256 JWT whose only custom claim is the principal id,
// matching the payload the original API signed. Issued tokens travel twice:
// in the JSON response body and in a same-named httpOnly cookie whose
// lifetime is a configured number of days.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/config"
)

// tokenCookieName is the cookie carrying the bearer token.
const tokenCookieName = "token"

// Claims represents the JWT payload: the subject principal id plus the
// standard registered claims (expiry, issue time).
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// signToken issues a credential for the given principal id.
func signToken(userID int64, cfg *config.AuthConfig) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", apperror.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// verifyToken parses and validates a credential string, normalizing the JWT
// library's error values into authentication errors so the middleware never
// leaks library internals to clients.
func verifyToken(tokenString string, cfg *config.AuthConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperror.NewAuthError("JSON Web Token has expired", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperror.NewAuthError("JSON Web Token is invalid", err)
		default:
			return nil, apperror.NewAuthError("JSON Web Token is invalid", err)
		}
	}
	if !token.Valid {
		return nil, apperror.NewAuthError("JSON Web Token is invalid", nil)
	}
	if claims.UserID == 0 {
		return nil, apperror.NewAuthError("JSON Web Token carries no principal id", nil)
	}

	return claims, nil
}

// tokenCookie builds the cookie that mirrors an issued credential. `secure`
// is set in production deployments only, matching the original behaviour.
func tokenCookie(token string, cfg *config.AuthConfig, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(cfg.CookieExpireDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   secure,
		Path:     "/",
	}
}

// ExpiredTokenCookie overwrites the token cookie with an immediately expiring
// placeholder; logout sends it, and so does account deletion in the users
// package, which is why it is exported.
func ExpiredTokenCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieName,
		Value:    "none",
		Expires:  time.Now(),
		HttpOnly: true,
		Secure:   secure,
		Path:     "/",
	}
}
