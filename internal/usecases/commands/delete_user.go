package commands

import (
	"context"
	"fmt"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/decorator"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	DeleteUserCommand struct {
		ID       model.UserID
		ClientIP string
	}

	DeleteUserCommandHandler = decorator.CommandHandler[DeleteUserCommand, struct{}]

	deleteUserCommandHandler struct {
		users  ports.UsersRepository
		audit  ports.AuditRepository
		logger logger.Logger
	}
)

func NewDeleteUserCommandHandler(
	users ports.UsersRepository,
	audit ports.AuditRepository,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeleteUserCommandHandler {
	return decorator.ApplyCommandDecorators[DeleteUserCommand, struct{}](
		deleteUserCommandHandler{users: users, audit: audit, logger: log},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deleteUserCommandHandler) Handle(ctx context.Context, cmd DeleteUserCommand) (struct{}, error) {
	if err := h.users.Delete(ctx, cmd.ID); err != nil {
		return struct{}{}, err
	}

	recordAudit(ctx, h.audit, h.logger, &cmd.ID, model.AuditActionDeleteUser,
		fmt.Sprintf("Deactivated user: %s", cmd.ID.String()), cmd.ClientIP)

	return struct{}{}, nil
}
