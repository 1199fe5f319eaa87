package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/playtaste/playtaste/application/service"
	"github.com/playtaste/playtaste/infrastructure/api/jsonapi"
	"github.com/playtaste/playtaste/internal/database"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError maps an error to an HTTP status and writes a JSON:API error body.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, title := statusFor(err)

	if logger != nil && status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}

	doc := jsonapi.NewErrorResponse(jsonapi.NewError(strconv.Itoa(status), title, err.Error()))
	WriteJSON(w, status, doc)
}

func statusFor(err error) (int, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code(), apiErr.Message()
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.StatusCode(), srvErr.Message()
	}

	switch {
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrInsufficientSeeds),
		errors.Is(err, service.ErrSeedLimit),
		errors.Is(err, service.ErrUnsupportedByCatalog):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.Is(err, service.ErrUnsupportedLocale):
		return http.StatusBadRequest, "bad request"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "upstream failure"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
