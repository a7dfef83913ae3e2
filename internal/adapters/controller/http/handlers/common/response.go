package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeValidationFailed   = "validation_failed"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeTooManyRequests    = "too_many_requests"
	CodeInternalError      = "internal_error"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// WriteServiceError maps domain errors to HTTP responses.
// Unknown errors are logged and answered with a bare 500.
func WriteServiceError(w http.ResponseWriter, logger *types.Logger, r *http.Request, err error) {
	var verr *errorz.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  errorz.ErrValidation.Error(),
			Code:   CodeValidationFailed,
			Fields: verr.Fields,
		})
	case errors.Is(err, errorz.ErrValidation):
		WriteError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
	case errors.Is(err, errorz.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	case errors.Is(err, errorz.ErrForbidden):
		WriteError(w, http.StatusForbidden, CodeForbidden, "forbidden")
	case errors.Is(err, errorz.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, errorz.ErrTooManyRequests):
		WriteError(w, http.StatusTooManyRequests, CodeTooManyRequests, "too many requests")
	default:
		logger.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		WriteError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}

// DecodeJSON reads a single JSON object from the request body, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}
