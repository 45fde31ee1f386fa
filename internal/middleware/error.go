package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"repair-desk/internal/domain"
	"repair-desk/internal/logger"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// StatusFor maps an error returned by a service to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithDomainError translates a service error into a structured response.
// Unclassified errors are logged and answered with a generic 500.
func RespondWithDomainError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := StatusFor(err)

	var vErr *domain.ValidationError
	var stockErr *domain.InsufficientStockError
	var transitionErr *domain.TransitionError
	var nfErr *domain.NotFoundError

	switch {
	case errors.As(err, &vErr):
		RespondWithValidationErrors(w, []ValidationError{{Field: vErr.Field, Message: vErr.Message}})
	case errors.As(err, &stockErr):
		RespondWithErrorDetails(w, status, err.Error(), map[string]interface{}{
			"productId": stockErr.ProductID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		RespondWithErrorDetails(w, status, err.Error(), map[string]interface{}{
			"from": transitionErr.From,
			"to":   transitionErr.To,
		})
	case errors.As(err, &nfErr):
		RespondWithErrorDetails(w, status, err.Error(), map[string]interface{}{
			"resource": nfErr.Resource,
			"id":       nfErr.ID,
		})
	case status == http.StatusInternalServerError:
		logger.WithContext(r.Context(), log).Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		RespondWithError(w, status, "internal server error")
	default:
		RespondWithError(w, status, err.Error())
	}
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.WithContext(r.Context(), log).Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
