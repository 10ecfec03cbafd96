package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"taskhub/internal/domain"
	"taskhub/internal/httputil"
	"taskhub/internal/observability"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		httputil.RespondValidationError(w, validationErr.Message, validationErr.Fields)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Router registers routes on a mux, instrumenting each under its pattern
type Router struct {
	Mux     *http.ServeMux
	Metrics *observability.Metrics
}

// HandleFunc registers fn for pattern ("METHOD /path")
func (rt Router) HandleFunc(pattern string, fn http.HandlerFunc) {
	rt.Mux.Handle(pattern, rt.Metrics.Instrument(pattern, fn))
}

// pathID parses a positive int64 path parameter, writing a 400 on failure
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := httputil.PathInt64(r, name)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

// parseBody decodes the JSON body, writing a 400 on failure
func parseBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
