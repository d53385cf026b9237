package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
)

type contextKey string

// RequestTracking establishes the correlation id and the per-hop request id
// for every request. The correlation id arrives in the configured header
// (the browser sends one per user action); when it is absent or blank a
// fresh one is generated server side. Both ids are stored on the request
// context and echoed on the response so the caller can correlate.
func RequestTracking(correlationHeader string) func(http.Handler) http.Handler {
	if correlationHeader == "" {
		correlationHeader = correlation.DefaultHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(correlationHeader)
			if correlationID == "" {
				correlationID = correlation.NewID()
			}

			requestID := r.Header.Get(correlation.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := correlation.WithID(r.Context(), correlationID)
			ctx = correlation.WithRequestID(ctx, requestID)

			w.Header().Set(correlationHeader, correlationID)
			w.Header().Set(correlation.RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
