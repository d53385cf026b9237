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
	UpdateUserCommand struct {
		ID       model.UserID
		Name     string
		Email    string
		ClientIP string
	}

	UpdateUserCommandHandler = decorator.CommandHandler[UpdateUserCommand, *model.User]

	updateUserCommandHandler struct {
		users  ports.UsersRepository
		audit  ports.AuditRepository
		logger logger.Logger
	}
)

func NewUpdateUserCommandHandler(
	users ports.UsersRepository,
	audit ports.AuditRepository,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UpdateUserCommandHandler {
	return decorator.ApplyCommandDecorators[UpdateUserCommand, *model.User](
		updateUserCommandHandler{users: users, audit: audit, logger: log},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h updateUserCommandHandler) Handle(ctx context.Context, cmd UpdateUserCommand) (*model.User, error) {
	if err := validateUserInput(cmd.Name, cmd.Email); err != nil {
		return nil, err
	}

	user, err := h.users.FetchByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	user.Update(cmd.Name, cmd.Email)

	if err := h.users.Update(ctx, user); err != nil {
		return nil, err
	}

	recordAudit(ctx, h.audit, h.logger, &user.ID, model.AuditActionUpdateUser,
		fmt.Sprintf("Updated user: %s", user.Email), cmd.ClientIP)

	return user, nil
}
