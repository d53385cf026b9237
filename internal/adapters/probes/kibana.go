package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// KibanaProbe checks the status API. Only an overall state of green counts
// as healthy.
type KibanaProbe struct {
	settings
	baseURL string
}

func NewKibanaProbe(baseURL string, opts ...Option) *KibanaProbe {
	return &KibanaProbe{
		settings: newSettings(opts...),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (p *KibanaProbe) Name() string {
	return "kibana"
}

func (p *KibanaProbe) Check(ctx context.Context) (string, error) {
	res, err := p.get(ctx, p.baseURL+"/api/status")
	if err != nil {
		return "", err
	}

	if res.code != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", res.code)
	}

	var payload struct {
		Status struct {
			Overall struct {
				State string `json:"state"`
			} `json:"overall"`
		} `json:"status"`
	}
	if err := json.Unmarshal(res.body, &payload); err != nil {
		return "", fmt.Errorf("decoding status: %w", err)
	}

	state := payload.Status.Overall.State
	if state == "" {
		state = "unknown"
	}

	if state != "green" {
		return "", fmt.Errorf("status is %q", state)
	}

	return fmt.Sprintf("Status: %s", state), nil
}
