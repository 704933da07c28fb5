package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/recipe-box/internal/domain"
)

// ErrorResponse is the JSON envelope for every non-2xx response body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v with the given status. Encoding failures are logged;
// at that point the status line has already been sent, so there is nothing
// better to do.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeNotFound writes a 404 with the given message (e.g. "recipe not found")
// because the handler is the layer that knows what was being looked up.
func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error: ErrorDetail{Code: "not_found", Message: message},
	})
}

// writeValidation writes a 422 with the message extracted from a wrapped
// domain.ErrValidation error.
func writeValidation(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error: ErrorDetail{Code: "validation_error", Message: validationDetail(err)},
	})
}

// writeBadRequest writes a 422 for a request rejected before reaching the
// service layer (e.g. missing or malformed body).
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error: ErrorDetail{Code: "validation_error", Message: message},
	})
}

// writeConflict writes a 409 with the given code ("tag_in_use" or "conflict")
// and message. The handler supplies the message; service error strings carry
// call-site prefixes that have no business in a response body.
func writeConflict(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusConflict, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// writeInternal logs the error and writes an opaque 500. The cause stays in
// the logs, never in the response body.
func writeInternal(w http.ResponseWriter, err error) {
	slog.Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{Code: "internal_error", Message: "internal server error"},
	})
}

// validationDetail extracts the detail following the domain.ErrValidation
// sentinel text, verbatim. e.g. "service.RecipeService.Create: validation
// error: name is required" → "name is required". The detail itself may
// contain any characters, so everything after the first sentinel marker is
// returned untouched.
func validationDetail(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return "invalid input"
}
