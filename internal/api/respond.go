package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"splittab/internal/auth"
	"splittab/internal/storage"
)

// ErrorBody is the canonical error payload. Every error response is
// `{"error": {code, message, details}}`; middleware that cannot import this
// package mirrors the shape.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes v under a data envelope.
func respond(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

// respondError renders an error response using the canonical error shape.
func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, map[string]any{"error": ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// writeError maps service and storage errors onto HTTP statuses. Anything
// unrecognized is a 500 with the detail kept out of the response.
func writeError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		respondError(w, http.StatusBadRequest, "VALIDATION", "invalid request", validationDetails(verrs))
	case errors.Is(err, errBadJSON):
		respondError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON", nil)
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, "WEAK_PASSWORD", auth.ErrWeakPassword.Error(), nil)
	case errors.Is(err, auth.ErrEmailExists):
		respondError(w, http.StatusConflict, "EMAIL_EXISTS", auth.ErrEmailExists.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", auth.ErrInvalidCredentials.Error(), nil)
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

// validationDetails flattens field errors into {json-ish field: failed rule}.
func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
