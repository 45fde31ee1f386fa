package transport

import (
	"net/http"
	"strconv"
	"time"

	"repair-desk/internal/domain"
	"repair-desk/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// decodeRequest decodes and validates the JSON body into dst. On failure it
// writes the 400 response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst interface{}) bool {
	if err := middleware.DecodeAndValidate(r, dst); err != nil {
		logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathID parses the {id} URL parameter. On failure it writes the 400 response.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "id", Message: "Invalid identifier"},
		})
		return uuid.Nil, false
	}
	return id, true
}

// dateRange reads the optional from and to query parameters. Both accept
// RFC 3339 timestamps or plain dates; a plain "to" date includes that whole day.
func dateRange(r *http.Request) (domain.DateRange, error) {
	var dr domain.DateRange
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, _, err := parseTime(v)
		if err != nil {
			return dr, domain.NewValidationError("from", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		}
		dr.From = t
	}
	if v := q.Get("to"); v != "" {
		t, dateOnly, err := parseTime(v)
		if err != nil {
			return dr, domain.NewValidationError("to", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		dr.To = t
	}
	return dr, nil
}

func parseTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	return t, true, err
}

// intQuery reads an optional integer query parameter, returning 0 when absent
func intQuery(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}
