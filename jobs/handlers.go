// Package jobs, as part of the postings module.
// This file, `handlers.go`, is the controller layer for the posting routes.
// The write routes run behind the employer/admin role allow-list, the apply
// route behind the user role; the listings are public.
package jobs

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/auth"
)

// Handlers wraps the jobs Service with HTTP handlers.
type Handlers struct {
	service  *Service
	rsp      *apperror.Responder
	validate *validator.Validate
}

// NewHandlers creates the posting handler set.
func NewHandlers(service *Service, rsp *apperror.Responder) *Handlers {
	return &Handlers{service: service, rsp: rsp, validate: validator.New()}
}

// decodeAndValidate decodes the JSON body into dst and runs the validator
// tags over it.
func (h *Handlers) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewBadRequestError("invalid request body", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperror.NewValidationError(err.Error(), err)
	}
	return nil
}

// principal pulls the authenticated user off the context, failing closed.
func (h *Handlers) principal(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.rsp.WriteError(w, r, apperror.NewAuthError("no authenticated user in request context", nil))
		return nil, false
	}
	return user, true
}

// jobID parses the {id} path parameter.
func (h *Handlers) jobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.rsp.WriteError(w, r, apperror.NewBadRequestError("invalid job id", err))
		return 0, false
	}
	return id, true
}

// HandleListJobs godoc
// @Summary List postings
// @Description Filterable, projectable, searchable posting listing, e.g. ?salary[gt]=50000&fields=title,company&q=node
// @Tags jobs
// @Produce json
// @Param q query string false "Full-text search term"
// @Param fields query string false "Comma-separated projection"
// @Success 200 {object} jobs.ListResponse "Matching postings"
// @Failure 400 {object} apperror.ErrorResponse "Malformed filter key or operator"
// @Router /jobs [get]
func (h *Handlers) HandleListJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.service.List(r.Context(), r.URL.Query())
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, ListResponse{Success: true, Results: len(data), Data: data})
	}
}

// HandleJobsInRadius godoc
// @Summary List postings near a postal code
// @Description Geocodes the postal code and returns postings within the given distance in miles.
// @Tags jobs
// @Produce json
// @Param zipcode path string true "Postal code"
// @Param distance path number true "Radius in miles"
// @Success 200 {object} jobs.ListResponse "Postings within the radius"
// @Failure 502 {object} apperror.ErrorResponse "Geocoding failed"
// @Router /jobs/{zipcode}/{distance} [get]
func (h *Handlers) HandleJobsInRadius() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
		if err != nil {
			h.rsp.WriteError(w, r, apperror.NewBadRequestError("invalid distance", err))
			return
		}

		data, err := h.service.InRadius(r.Context(), chi.URLParam(r, "zipcode"), distance, r.URL.Query())
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, ListResponse{Success: true, Results: len(data), Data: data})
	}
}

// HandleGetJob godoc
// @Summary Get one posting
// @Description Fetches a posting addressed by both its id and slug.
// @Tags jobs
// @Produce json
// @Param id path int true "Posting id"
// @Param slug path string true "Posting slug"
// @Success 200 {object} jobs.JobResponse "The posting"
// @Failure 404 {object} apperror.ErrorResponse "No posting with this id and slug"
// @Router /job/{id}/{slug} [get]
func (h *Handlers) HandleGetJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.jobID(w, r)
		if !ok {
			return
		}

		job, err := h.service.GetByIDAndSlug(r.Context(), id, chi.URLParam(r, "slug"))
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, JobResponse{Success: true, Data: job})
	}
}

// HandleCreateJob godoc
// @Summary Create a posting
// @Description Stores a new posting owned by the authenticated employer; slug and location are derived.
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param jobBody body jobs.CreateJobRequest true "Posting details"
// @Success 200 {object} jobs.JobResponse "Created posting"
// @Failure 403 {object} apperror.ErrorResponse "Role not allowed"
// @Router /job/new [post]
func (h *Handlers) HandleCreateJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.principal(w, r)
		if !ok {
			return
		}

		var req CreateJobRequest
		if err := h.decodeAndValidate(r, &req); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		job, err := h.service.Create(r.Context(), user, req)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, JobResponse{Success: true, Data: job})
	}
}

// HandleUpdateJob godoc
// @Summary Update a posting
// @Description Replaces the editable fields of an owned posting; slug and location are rederived. An absent lastDate keeps the current closing date.
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Posting id"
// @Param jobBody body jobs.CreateJobRequest true "Posting details"
// @Success 200 {object} jobs.JobResponse "Updated posting"
// @Failure 403 {object} apperror.ErrorResponse "Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "No such posting"
// @Router /job/{id} [put]
func (h *Handlers) HandleUpdateJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.principal(w, r)
		if !ok {
			return
		}
		id, ok := h.jobID(w, r)
		if !ok {
			return
		}

		var req CreateJobRequest
		if err := h.decodeAndValidate(r, &req); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		job, err := h.service.Update(r.Context(), user, id, req)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, JobResponse{Success: true, Data: job})
	}
}

// HandleDeleteJob godoc
// @Summary Delete a posting
// @Description Removes an owned posting together with its applications and their stored résumés.
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Posting id"
// @Success 200 {object} jobs.MessageResponse "Posting deleted"
// @Failure 403 {object} apperror.ErrorResponse "Not the owner"
// @Router /job/{id} [delete]
func (h *Handlers) HandleDeleteJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.principal(w, r)
		if !ok {
			return
		}
		id, ok := h.jobID(w, r)
		if !ok {
			return
		}

		if err := h.service.Delete(r.Context(), user, id); err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Job is deleted"})
	}
}

// HandleStats godoc
// @Summary Posting statistics for a topic
// @Description Aggregates count, average positions and salary figures over postings matching the topic.
// @Tags jobs
// @Produce json
// @Param topic path string true "Search topic"
// @Success 200 {object} jobs.StatsResponse "Aggregated figures"
// @Failure 404 {object} apperror.ErrorResponse "No postings match the topic"
// @Router /stats/{topic} [get]
func (h *Handlers) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.service.Stats(r.Context(), chi.URLParam(r, "topic"))
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, StatsResponse{Success: true, Data: stats})
	}
}

// HandleApplyToJob godoc
// @Summary Apply to a posting
// @Description Uploads a résumé (.pdf or .docx) and records the application; re-applying replaces the résumé.
// @Tags jobs
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Posting id"
// @Param file formData file true "Résumé file"
// @Success 200 {object} jobs.ApplicationResponse "Application stored"
// @Failure 400 {object} apperror.ErrorResponse "Wrong file type, file too large, or posting closed"
// @Router /job/{id}/apply [put]
func (h *Handlers) HandleApplyToJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.principal(w, r)
		if !ok {
			return
		}
		id, ok := h.jobID(w, r)
		if !ok {
			return
		}

		// Bound the in-memory form parse by the configured upload limit; the
		// store re-checks the declared and actual sizes on its own.
		if err := r.ParseMultipartForm(h.service.files.MaxSize()); err != nil {
			h.rsp.WriteError(w, r, apperror.NewBadRequestError("invalid multipart form", err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			h.rsp.WriteError(w, r, apperror.NewBadRequestError("please upload a résumé file under 'file'", err))
			return
		}
		defer file.Close()

		app, err := h.service.Apply(r.Context(), user, id, header.Filename, header.Size, file)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, ApplicationResponse{
			Success: true,
			Message: "Applied to job successfully",
			Data:    app,
		})
	}
}

// HandleAppliedJobs godoc
// @Summary List own applications
// @Description Returns the postings the authenticated user has applied to, newest first.
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobs.AppliedJobsResponse "Applications"
// @Router /jobs/applied [get]
func (h *Handlers) HandleAppliedJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.principal(w, r)
		if !ok {
			return
		}

		applied, err := h.service.AppliedJobs(r.Context(), user.ID)
		if err != nil {
			h.rsp.WriteError(w, r, err)
			return
		}
		h.rsp.WriteJSON(w, http.StatusOK, AppliedJobsResponse{Success: true, Results: len(applied), Data: applied})
	}
}
