package queries

import (
	"context"
	"fmt"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/decorator"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	ListUsersQuery struct {
		Filter   model.UserFilter
		ClientIP string
	}

	ListUsersQueryHandler = decorator.QueryHandler[ListUsersQuery, *model.UserList]

	listUsersQueryHandler struct {
		users  ports.UsersRepository
		audit  ports.AuditRepository
		logger logger.Logger
	}
)

func NewListUsersQueryHandler(
	users ports.UsersRepository,
	audit ports.AuditRepository,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListUsersQueryHandler {
	return decorator.ApplyQueryDecorators[ListUsersQuery, *model.UserList](
		listUsersQueryHandler{users: users, audit: audit, logger: log},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listUsersQueryHandler) Execute(ctx context.Context, query ListUsersQuery) (*model.UserList, error) {
	list, err := h.users.List(ctx, query.Filter)
	if err != nil {
		return nil, err
	}

	// Listing is audited like a mutation, reading user data is sensitive.
	// Audit failures never fail the listing itself.
	entry := model.NewAuditEntry(model.AuditActionListUsers, model.AuditResourceUsers)
	entry.Details = fmt.Sprintf("Retrieved %d users (page %d)", len(list.Users), list.Pagination.Page)
	entry.IPAddress = query.ClientIP
	entry.TraceID = correlation.FromContext(ctx)

	if err := h.audit.Record(ctx, entry); err != nil {
		ctxLog := h.logger.WithContext(ctx)
		ctxLog.Warn().
			Err(err).
			Str("action", model.AuditActionListUsers).
			Msg("failed to record audit entry")
	}

	return list, nil
}
