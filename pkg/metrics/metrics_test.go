package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestOTelClientRecordsPreRegisteredCounter(t *testing.T) {
	t.Parallel()

	client, err := metrics.NewOTelClient(
		"test-service",
		"0.0.0",
		metrics.WithInt64Counter("http.requests", metrics.Descriptor{
			Description: "Total HTTP requests.",
		}),
	)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, client.Shutdown(t.Context()))
	}()

	client.Inc(t.Context(), "http.requests", int64(3), attribute.String("http.method", "GET"))

	body := scrape(t, client)
	require.Contains(t, body, "http_requests")
	require.Contains(t, body, `http_method="GET"`)
}

func TestOTelClientCreatesInstrumentsLazily(t *testing.T) {
	t.Parallel()

	client, err := metrics.NewOTelClient("test-service", "0.0.0")
	require.NoError(t, err)

	defer func() {
		require.NoError(t, client.Shutdown(t.Context()))
	}()

	client.Inc(t.Context(), "queries.fetch_health.success", 1)
	client.Inc(t.Context(), "queries.fetch_health.duration", 150*time.Millisecond)

	body := scrape(t, client)
	require.Contains(t, body, "queries_fetch_health_success")
	require.Contains(t, body, "queries_fetch_health_duration")
}

func TestOTelClientDropsUnsupportedValues(t *testing.T) {
	t.Parallel()

	client, err := metrics.NewOTelClient("test-service", "0.0.0")
	require.NoError(t, err)

	defer func() {
		require.NoError(t, client.Shutdown(t.Context()))
	}()

	client.Inc(t.Context(), "bad.value", "not a number")

	body := scrape(t, client)
	require.NotContains(t, body, "bad_value")
}

func scrape(t *testing.T, client *metrics.OTelClient) string {
	t.Helper()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/metrics", nil)

	client.Handler().ServeHTTP(recorder, request)
	require.Equal(t, 200, recorder.Code)

	return recorder.Body.String()
}
