// Package apperror, response-writing side.
// The Responder turns errors and payloads into JSON responses. It is constructed
// once in main with the deployment mode and injected into every handler set,
// so no handler ever consults ambient state to decide how much detail to leak.
// In the Express implementation this port follows, the same switch lived in the
// error middleware keyed on NODE_ENV.
package apperror

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"
)

// Responder writes JSON success and error responses.
type Responder struct {
	// production suppresses the `error` and `stack` diagnostic fields.
	production bool
}

// NewResponder creates a Responder for the given deployment mode.
func NewResponder(production bool) *Responder {
	return &Responder{production: production}
}

// WriteJSON serializes `data` to JSON and writes it with the given status.
func (rs *Responder) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil { // Avoid writing nil, which would render as a bare "null" body
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Encoding failures are a server-side defect; nothing more useful
			// can be written to this response at this point.
			log.Printf("failed to encode response: %v", err)
		}
	}
}

// WriteError converts any error into the standardized error envelope and writes it.
// Errors that are not already an *AppError are classified as internal errors,
// a deliberate 500 fallback rather than a silent drop.
func (rs *Responder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := FromError(err)
	if !ok {
		appErr = NewInternalError("an unexpected error occurred", err)
	}

	// Server-side faults are logged with the request line for correlation;
	// the chi Logger middleware prints the matching request entry.
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("error handling %s %s: %v", r.Method, r.URL.Path, appErr)
	}

	resp := appErr.ToResponse(!rs.production)
	if !rs.production {
		resp.Stack = string(debug.Stack())
	}
	rs.WriteJSON(w, appErr.StatusCode(), resp)
}
