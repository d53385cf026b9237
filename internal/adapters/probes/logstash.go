package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// LogstashProbe checks the node stats API and reports how many events the
// pipeline has consumed.
type LogstashProbe struct {
	settings
	baseURL string
}

func NewLogstashProbe(baseURL string, opts ...Option) *LogstashProbe {
	return &LogstashProbe{
		settings: newSettings(opts...),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (p *LogstashProbe) Name() string {
	return "logstash"
}

func (p *LogstashProbe) Check(ctx context.Context) (string, error) {
	res, err := p.get(ctx, p.baseURL+"/_node/stats")
	if err != nil {
		return "", err
	}

	if res.code != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", res.code)
	}

	var stats struct {
		Pipeline struct {
			Events struct {
				In int64 `json:"in"`
			} `json:"events"`
		} `json:"pipeline"`
	}
	if err := json.Unmarshal(res.body, &stats); err != nil {
		return "", fmt.Errorf("decoding node stats: %w", err)
	}

	return fmt.Sprintf("Pipeline: %d events", stats.Pipeline.Events.In), nil
}
