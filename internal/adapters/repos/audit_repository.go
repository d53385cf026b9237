package repos

import (
	"context"
	"fmt"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
)

const auditLogsTable = "audit_logs"

// AuditRepository persists audit trail entries.
type AuditRepository struct {
	pool   PoolOps
	logger logger.Logger
}

// NewAuditRepository creates a new AuditRepository with the given dependencies.
func NewAuditRepository(pool PoolOps, log logger.Logger) *AuditRepository {
	return &AuditRepository{
		pool:   pool,
		logger: log,
	}
}

func (r *AuditRepository) Record(ctx context.Context, entry *model.AuditEntry) error {
	// user_id stays NULL for actions not tied to a stored user.
	var userID any
	if entry.UserID != nil {
		userID = entry.UserID.String()
	}

	query, args, err := psql.Insert(auditLogsTable).
		Columns("id", "user_id", "action", "resource", "details", "ip_address", "trace_id", "timestamp").
		Values(
			entry.ID.String(),
			userID,
			entry.Action,
			entry.Resource,
			entry.Details,
			entry.IPAddress,
			entry.TraceID,
			entry.Timestamp,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	return nil
}
