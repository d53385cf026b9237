package probes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ramisettybhargavi/devsecops-backend/internal/adapters/probes"
	"github.com/stretchr/testify/require"
)

func TestJaegerProbeCheck(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		statusCode     int
		expectedDetail string
		expectedErr    string
	}{
		{
			name:           "collector answers",
			statusCode:     http.StatusOK,
			expectedDetail: "HTTP 200",
		},
		{
			name:        "collector rejects",
			statusCode:  http.StatusBadGateway,
			expectedErr: "HTTP 502",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/", r.URL.Path)
				w.WriteHeader(tc.statusCode)
			}))
			t.Cleanup(server.Close)

			probe := probes.NewJaegerProbe(server.URL, probes.WithRetryPolicy(fastRetry(0)))

			detail, err := probe.Check(context.Background())
			if tc.expectedErr != "" {
				require.EqualError(t, err, tc.expectedErr)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expectedDetail, detail)
		})
	}
}
