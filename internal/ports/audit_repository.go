package ports

import (
	"context"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
)

// AuditRepository defines the interface for persisting audit trail entries.
type AuditRepository interface {
	// Record stores a single audit entry.
	Record(ctx context.Context, entry *model.AuditEntry) error
}
