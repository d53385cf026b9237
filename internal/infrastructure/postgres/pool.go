package postgres

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ramisettybhargavi/devsecops-backend/internal/config"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
)

func NewPool(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// WaitForDatabase pings the pool under the bounded backoff policy until the
// database answers, intended as the startup gate so the service never serves
// traffic before its primary store is reachable. The attempt budget makes a
// dead database a fatal startup error instead of an endless wait.
func WaitForDatabase(ctx context.Context, pool *pgxpool.Pool, cfg config.Backoff, log logger.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.BaseDelay
	policy.Multiplier = cfg.Multiplier
	policy.RandomizationFactor = cfg.Jitter
	policy.MaxInterval = cfg.MaxDelay

	attempt := 0

	operation := func() error {
		attempt++

		if err := pool.Ping(ctx); err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("database not ready yet")

			return err
		}

		return nil
	}

	err := backoff.Retry(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(cfg.MaxRetries)), ctx),
	)
	if err != nil {
		return fmt.Errorf("waiting for database after %d attempts: %w", attempt, err)
	}

	log.Info().Int("attempts", attempt).Msg("database is ready")

	return nil
}
