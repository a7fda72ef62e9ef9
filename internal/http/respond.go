package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/XaviGIT/budget-app/internal/core"
)

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: not found 404,
// conflict 409, failed precondition 412, invalid argument 422, storage
// contention 503 with a Retry-After hint. Anything else is a 500 with the
// detail kept out of the body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, core.ErrPreconditionFailed):
		status = http.StatusPreconditionFailed
	case errors.Is(err, core.ErrInvalidArgument):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrStorageConflict):
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "1")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %s: %w", err, core.ErrInvalidArgument)
	}
	return nil
}

// parseAmount parses a wire decimal ("12.34") into Money.
func parseAmount(field, s string) (core.Money, error) {
	m, err := core.ParseMoney(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("%s: %w", field, err)
	}
	return m, nil
}

// parseOptionalAmount treats an absent string as zero.
func parseOptionalAmount(field, s string) (core.Money, error) {
	if s == "" {
		return core.Money{}, nil
	}
	return parseAmount(field, s)
}
