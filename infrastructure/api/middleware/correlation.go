package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/playtaste/playtaste/internal/log"
)

// correlationHeader carries the correlation ID across service boundaries.
const correlationHeader = "X-Correlation-ID"

// CorrelationID propagates an incoming correlation ID, or generates one,
// and stores it on the request context for structured logging.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(correlationHeader))
		if id == "" {
			id = uuid.NewString()
		}

		ctx := log.WithCorrelationID(r.Context(), id)
		w.Header().Set(correlationHeader, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
