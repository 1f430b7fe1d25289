// Package auth, as part of the authentication module.
// This file, `handlers.go`, is the controller layer for the auth routes. Each
// handler decodes a DTO, runs the validator over it, delegates to the Service
// and writes the response through the shared Responder. Handlers that issue a
// credential also mirror it into the token cookie.
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/config"
)

// Handlers wraps the auth Service with HTTP handlers.
type Handlers struct {
	service      *Service
	rsp          *apperror.Responder
	validate     *validator.Validate
	authCfg      *config.AuthConfig
	secureCookie bool
}

// NewHandlers creates the auth handler set. `secureCookie` marks issued
// cookies Secure and is enabled for production deployments.
func NewHandlers(service *Service, rsp *apperror.Responder, authCfg *config.AuthConfig, secureCookie bool) *Handlers {
	return &Handlers{
		service:      service,
		rsp:          rsp,
		validate:     validator.New(),
		authCfg:      authCfg,
		secureCookie: secureCookie,
	}
}

// decodeAndValidate decodes the JSON body into dst and runs the validator
// tags over it, converting failures into a client-facing ValidationError.
func (h *Handlers) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewBadRequestError("invalid request body", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperror.NewValidationError(err.Error(), err)
	}
	return nil
}

// sendToken writes an issued credential both as the token cookie and in the
// response body, the way the original `sendToken` helper did.
func (h *Handlers) sendToken(w http.ResponseWriter, status int, token string) {
	http.SetCookie(w, tokenCookie(token, h.authCfg, h.secureCookie))
	h.rsp.WriteJSON(w, status, TokenResponse{Success: true, Token: token})
}

// HandleRegister godoc
// @Summary Register a new user
// @Description Creates a user or employer account and issues a credential.
// @Tags user
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 200 {object} auth.TokenResponse "Account created, token issued"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 409 {object} apperror.ErrorResponse "Email already exists"
// @Router /user/create [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := h.decodeAndValidate(r, &req); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		_, token, err := h.service.Register(r.Context(), req)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.sendToken(w, http.StatusOK, token)
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Authenticates by email and password and issues a credential.
// @Tags user
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.TokenResponse "Login successful"
// @Failure 401 {object} apperror.ErrorResponse "Invalid email or password"
// @Router /user/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := h.decodeAndValidate(r, &req); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		_, token, err := h.service.Login(r.Context(), req)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.sendToken(w, http.StatusOK, token)
	}
}

// HandleLogout godoc
// @Summary Log out
// @Description Clears the token cookie. The bearer token itself simply ages out.
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.MessageResponse "Logged out"
// @Router /user/logout [get]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, ExpiredTokenCookie(h.secureCookie))
		h.rsp.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Successfully logged out"})
	}
}

// HandleUpdatePassword godoc
// @Summary Update password
// @Description Changes the password after verifying the old one; issues a fresh credential.
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwordBody body auth.UpdatePasswordRequest true "Old and new passwords"
// @Success 200 {object} auth.TokenResponse "Password updated"
// @Failure 401 {object} apperror.ErrorResponse "Invalid old password"
// @Router /user/password/update [put]
func (h *Handlers) HandleUpdatePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			h.rsp.WriteError(w, r, apperror.NewAuthError("no authenticated user in request context", nil))
			return
		}

		var req UpdatePasswordRequest
		if err := h.decodeAndValidate(r, &req); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		token, err := h.service.UpdatePassword(r.Context(), user.ID, req)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.sendToken(w, http.StatusOK, token)
	}
}

// HandleForgotPassword godoc
// @Summary Request a password reset
// @Description Emails a single-use, time-boxed reset link to the account address.
// @Tags user
// @Accept json
// @Produce json
// @Param forgotBody body auth.ForgotPasswordRequest true "Account email"
// @Success 200 {object} auth.MessageResponse "Reset email sent"
// @Failure 404 {object} apperror.ErrorResponse "No account for this email"
// @Failure 502 {object} apperror.ErrorResponse "Email delivery failed; token invalidated"
// @Router /user/password/forgot [post]
func (h *Handlers) HandleForgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForgotPasswordRequest
		if err := h.decodeAndValidate(r, &req); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		// Only the HTTP layer knows the externally visible host, so the
		// reset link is rendered here and handed into the service.
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		buildResetURL := func(rawToken string) string {
			return fmt.Sprintf("%s://%s/api/v1/user/password/reset/%s", scheme, r.Host, rawToken)
		}

		if err := h.service.ForgotPassword(r.Context(), req.Email, buildResetURL); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.rsp.WriteJSON(w, http.StatusOK, MessageResponse{
			Success: true,
			Message: fmt.Sprintf("Password recovery email sent to %s", req.Email),
		})
	}
}

// HandleResetPassword godoc
// @Summary Reset password with a token
// @Description Completes the reset flow; the token is single-use and time-boxed.
// @Tags user
// @Accept json
// @Produce json
// @Param token path string true "Raw reset token from the email link"
// @Param resetBody body auth.ResetPasswordRequest true "New password"
// @Success 200 {object} auth.TokenResponse "Password reset, token issued"
// @Failure 400 {object} apperror.ErrorResponse "Token invalid, consumed or expired"
// @Router /user/password/reset/{token} [put]
func (h *Handlers) HandleResetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken := chi.URLParam(r, "token")
		if rawToken == "" {
			h.rsp.WriteError(w, r, apperror.NewBadRequestError("password reset token is required", nil))
			return
		}

		var req ResetPasswordRequest
		if err := h.decodeAndValidate(r, &req); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		_, token, err := h.service.ResetPassword(r.Context(), rawToken, req.Password)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.sendToken(w, http.StatusOK, token)
	}
}
