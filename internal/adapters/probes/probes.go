// Package probes implements liveness checks against the external
// dependencies of the service: the primary PostgreSQL store and the
// observability backends whose status the service reports.
package probes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
)

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = 100 * time.Millisecond
	defaultMaxDelay   = time.Second
	defaultMultiplier = 2.0
	defaultJitter     = 0.3

	maxResponseBytes = 1 << 20
)

// RetryPolicy bounds how often an outbound check is reattempted before the
// probe gives up. Retries also stop when the probe context expires.
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64
}

// DefaultRetryPolicy returns the retry bounds applied when none are configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: defaultMaxRetries,
		BaseDelay:  defaultBaseDelay,
		MaxDelay:   defaultMaxDelay,
		Multiplier: defaultMultiplier,
		Jitter:     defaultJitter,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}

	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}

	if p.Multiplier <= 0 {
		p.Multiplier = defaultMultiplier
	}

	return p
}

type settings struct {
	client            *http.Client
	correlationHeader string
	retry             RetryPolicy
}

// Option configures an HTTP probe.
type Option func(*settings)

// WithHTTPClient allows injecting a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.client = client
		}
	}
}

// WithCorrelationHeader overrides the header used to forward the correlation
// id on outbound check requests.
func WithCorrelationHeader(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.correlationHeader = name
		}
	}
}

// WithRetryPolicy overrides the bounded retry applied to outbound checks.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(s *settings) {
		s.retry = policy
	}
}

func newSettings(opts ...Option) settings {
	s := settings{
		client:            http.DefaultClient,
		correlationHeader: correlation.DefaultHeader,
		retry:             DefaultRetryPolicy(),
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

type httpResult struct {
	code int
	body []byte
}

// get fetches url, forwarding the correlation id from ctx and retrying
// transport failures and 5xx answers within the retry policy. Any response
// below 500 is handed back for the probe to judge.
func (s settings) get(ctx context.Context, url string) (httpResult, error) {
	policy := s.retry.withDefaults()

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = policy.BaseDelay
	expBackoff.Multiplier = policy.Multiplier
	expBackoff.RandomizationFactor = policy.Jitter
	expBackoff.MaxInterval = policy.MaxDelay

	retryBackoff := backoff.WithContext(backoff.WithMaxRetries(expBackoff, policy.MaxRetries), ctx)

	var (
		last       httpResult
		haveResult bool
	)

	operation := func() error {
		res, err := s.fetch(ctx, url)
		if err != nil {
			return err
		}

		last = res
		haveResult = true

		if res.code >= http.StatusInternalServerError {
			return fmt.Errorf("HTTP %d", res.code)
		}

		return nil
	}

	if err := backoff.Retry(operation, retryBackoff); err != nil {
		if haveResult {
			return last, nil
		}

		return httpResult{}, err
	}

	return last, nil
}

func (s settings) fetch(ctx context.Context, url string) (httpResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return httpResult{}, backoff.Permanent(err)
	}

	if id := correlation.FromContext(ctx); id != "" {
		req.Header.Set(s.correlationHeader, id)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return httpResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return httpResult{}, err
	}

	return httpResult{code: resp.StatusCode, body: body}, nil
}
