package probes

import (
	"context"
	"fmt"

	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
)

// PostgresProbe reports whether the primary store answers a ping.
type PostgresProbe struct {
	db ports.DatabaseHealthChecker
}

func NewPostgresProbe(db ports.DatabaseHealthChecker) *PostgresProbe {
	return &PostgresProbe{db: db}
}

func (p *PostgresProbe) Name() string {
	return "database"
}

func (p *PostgresProbe) Check(ctx context.Context) (string, error) {
	if err := p.db.Ping(ctx); err != nil {
		return "", fmt.Errorf("pinging database: %w", err)
	}

	return "connected", nil
}
