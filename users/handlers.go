// Package users, as part of the account-management module.
// This file, `handlers.go`, is the controller layer for the account routes.
// All of them run behind the authentication middleware; the admin routes
// additionally sit behind the role allow-list.
package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/auth"
)

// Handlers wraps the users Service with HTTP handlers.
type Handlers struct {
	service  *Service
	rsp      *apperror.Responder
	validate *validator.Validate
}

// NewHandlers creates the account handler set.
func NewHandlers(service *Service, rsp *apperror.Responder) *Handlers {
	return &Handlers{service: service, rsp: rsp, validate: validator.New()}
}

// HandleGetProfile godoc
// @Summary Get own profile
// @Description Returns the authenticated account; employers also get their published postings.
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.ProfileResponse "Account profile"
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Router /user/get [get]
func (h *Handlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			h.rsp.WriteError(w, r, apperror.NewAuthError("no authenticated user in request context", nil))
			return
		}

		profile, err := h.service.GetProfile(r.Context(), user)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.rsp.WriteJSON(w, http.StatusOK, ProfileResponse{Success: true, Data: profile})
	}
}

// HandleUpdateUser godoc
// @Summary Update own profile
// @Description Applies a partial name/email update to the authenticated account.
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param updateBody body users.UpdateUserRequest true "Fields to update"
// @Success 200 {object} users.UserResponse "Updated account"
// @Failure 409 {object} apperror.ErrorResponse "Email already exists"
// @Router /user/update [put]
func (h *Handlers) HandleUpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			h.rsp.WriteError(w, r, apperror.NewAuthError("no authenticated user in request context", nil))
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.rsp.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()
		if err := h.validate.Struct(&req); err != nil {
			h.rsp.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
			return
		}

		updated, err := h.service.Update(r.Context(), user.ID, req)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.rsp.WriteJSON(w, http.StatusOK, UserResponse{Success: true, Data: updated})
	}
}

// HandleDeleteUser godoc
// @Summary Delete own account
// @Description Removes the account, its postings or applications, and the résumé files tied to them.
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.MessageResponse "Account deleted"
// @Router /user/delete [delete]
func (h *Handlers) HandleDeleteUser(secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			h.rsp.WriteError(w, r, apperror.NewAuthError("no authenticated user in request context", nil))
			return
		}

		if err := h.service.Delete(r.Context(), user.ID); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		// The credential names a user that no longer exists; clear the cookie
		// so the client does not keep presenting it.
		http.SetCookie(w, auth.ExpiredTokenCookie(secureCookie))
		h.rsp.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Your account has been deleted"})
	}
}

// HandleListUsers godoc
// @Summary List accounts (admin)
// @Description Filterable, projectable account listing. Credential columns are never projectable.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param fields query string false "Comma-separated projection, e.g. name,email"
// @Success 200 {object} users.ListResponse "Matching accounts"
// @Failure 403 {object} apperror.ErrorResponse "Role not allowed"
// @Router /users [get]
func (h *Handlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.service.List(r.Context(), r.URL.Query())
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.rsp.WriteJSON(w, http.StatusOK, ListResponse{Success: true, Results: len(data), Data: data})
	}
}

// HandleAdminDeleteUser godoc
// @Summary Delete an account by id (admin)
// @Description Removes any account with the same cascade and file cleanup as self-deletion.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account id"
// @Success 200 {object} users.MessageResponse "Account deleted"
// @Failure 404 {object} apperror.ErrorResponse "No such account"
// @Router /user/{id} [delete]
func (h *Handlers) HandleAdminDeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.rsp.WriteError(w, r, apperror.NewBadRequestError("invalid user id", err))
			return
		}

		if err := h.service.AdminDelete(r.Context(), id); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}

		h.rsp.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "User deleted by admin"})
	}
}
