package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ElasticsearchProbe checks the cluster health endpoint. Green and yellow
// cluster states count as healthy, red does not.
type ElasticsearchProbe struct {
	settings
	baseURL string
}

func NewElasticsearchProbe(baseURL string, opts ...Option) *ElasticsearchProbe {
	return &ElasticsearchProbe{
		settings: newSettings(opts...),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (p *ElasticsearchProbe) Name() string {
	return "elasticsearch"
}

func (p *ElasticsearchProbe) Check(ctx context.Context) (string, error) {
	res, err := p.get(ctx, p.baseURL+"/_cluster/health")
	if err != nil {
		return "", err
	}

	if res.code != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", res.code)
	}

	var health struct {
		ClusterName   string `json:"cluster_name"`
		Status        string `json:"status"`
		NumberOfNodes int    `json:"number_of_nodes"`
	}
	if err := json.Unmarshal(res.body, &health); err != nil {
		return "", fmt.Errorf("decoding cluster health: %w", err)
	}

	if health.Status != "green" && health.Status != "yellow" {
		return "", fmt.Errorf("cluster status %q", health.Status)
	}

	return fmt.Sprintf("Cluster: %s, Nodes: %d", health.ClusterName, health.NumberOfNodes), nil
}
