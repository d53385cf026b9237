package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"

	codeValidationFailed = "VALIDATION_FAILED"
	codeInvalidUserID    = "INVALID_USER_ID"
	codeUserNotFound     = "USER_NOT_FOUND"
	codeDuplicateEmail   = "DUPLICATE_EMAIL"
	codeInternalError    = "INTERNAL_ERROR"
)

type (
	// ErrorResponse is the JSON body returned for every failed request.
	ErrorResponse struct {
		Code      string        `json:"code"`
		Message   string        `json:"message"`
		Timestamp time.Time     `json:"timestamp"`
		TraceID   string        `json:"trace_id,omitempty"`
		Details   []ErrorDetail `json:"details,omitempty"`
	}

	ErrorDetail struct {
		Field   string `json:"field"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates domain errors into coded JSON responses. Unknown
// errors never leak their message to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	response := ErrorResponse{
		Timestamp: time.Now().UTC(),
		TraceID:   correlation.FromContext(r.Context()),
	}

	var validationErrs *model.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		response.Code = codeValidationFailed
		response.Message = "request validation failed"

		for _, v := range validationErrs.Errors {
			response.Details = append(response.Details, ErrorDetail{
				Field:   v.Field,
				Message: v.Message,
				Code:    v.Code,
			})
		}

		writeJSON(w, http.StatusBadRequest, response)
	case errors.Is(err, model.ErrInvalidUserID):
		response.Code = codeInvalidUserID
		response.Message = "invalid user ID"
		writeJSON(w, http.StatusBadRequest, response)
	case errors.Is(err, model.ErrUserNotFound):
		response.Code = codeUserNotFound
		response.Message = "user not found"
		writeJSON(w, http.StatusNotFound, response)
	case errors.Is(err, model.ErrDuplicateEmail):
		response.Code = codeDuplicateEmail
		response.Message = "email already registered"
		writeJSON(w, http.StatusConflict, response)
	default:
		response.Code = codeInternalError
		response.Message = "internal server error"
		writeJSON(w, http.StatusInternalServerError, response)
	}
}
