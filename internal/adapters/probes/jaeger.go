package probes

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// JaegerProbe checks the collector admin endpoint, which answers 200 once
// the collector is up.
type JaegerProbe struct {
	settings
	baseURL string
}

func NewJaegerProbe(baseURL string, opts ...Option) *JaegerProbe {
	return &JaegerProbe{
		settings: newSettings(opts...),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (p *JaegerProbe) Name() string {
	return "jaeger"
}

func (p *JaegerProbe) Check(ctx context.Context) (string, error) {
	res, err := p.get(ctx, p.baseURL+"/")
	if err != nil {
		return "", err
	}

	if res.code != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", res.code)
	}

	return fmt.Sprintf("HTTP %d", res.code), nil
}
