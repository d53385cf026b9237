package middleware

import (
	"fmt"
	"net/http"

	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "http.server"

// Tracer starts a server span per request, carrying the HTTP attributes and
// the correlation id so downstream spans can be stitched to the originating
// browser action.
func Tracer(tracerProvider otelTrace.TracerProvider) func(http.Handler) http.Handler {
	tracer := tracerProvider.Tracer(tracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			spanName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)

			ctx, span := tracer.Start(r.Context(), spanName,
				otelTrace.WithSpanKind(otelTrace.SpanKindServer),
				otelTrace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					semconv.UserAgentOriginal(r.UserAgent()),
				),
			)
			defer span.End()

			if correlationID := correlation.FromContext(ctx); correlationID != "" {
				span.SetAttributes(attribute.String("trace_id", correlationID))
			}

			wrapped := NewResponseRecorder(w)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			span.SetAttributes(semconv.HTTPResponseStatusCode(wrapped.StatusCode()))

			if wrapped.StatusCode() >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(wrapped.StatusCode()))
			}
		})
	}
}
