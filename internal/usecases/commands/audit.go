package commands

import (
	"context"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
)

func validateUserInput(name, email string) error {
	validationErrors := model.NewValidationErrors()

	if name == "" {
		validationErrors.Add("name", "name is required", "REQUIRED")
	}

	if email == "" {
		validationErrors.Add("email", "email is required", "REQUIRED")
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}

	return nil
}

// recordAudit stores an audit entry for a completed action. Audit failures
// never fail the action itself, they are logged and dropped.
func recordAudit(
	ctx context.Context,
	audit ports.AuditRepository,
	log logger.Logger,
	userID *model.UserID,
	action, details, clientIP string,
) {
	entry := model.NewAuditEntry(action, model.AuditResourceUsers)
	entry.UserID = userID
	entry.Details = details
	entry.IPAddress = clientIP
	entry.TraceID = correlation.FromContext(ctx)

	if err := audit.Record(ctx, entry); err != nil {
		ctxLog := log.WithContext(ctx)
		ctxLog.Warn().
			Err(err).
			Str("action", action).
			Msg("failed to record audit entry")
	}
}
