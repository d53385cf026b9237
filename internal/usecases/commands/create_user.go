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
	"golang.org/x/crypto/bcrypt"
)

type (
	CreateUserCommand struct {
		Name     string
		Email    string
		Password string
		ClientIP string
	}

	CreateUserCommandHandler = decorator.CommandHandler[CreateUserCommand, *model.User]

	createUserCommandHandler struct {
		users  ports.UsersRepository
		audit  ports.AuditRepository
		logger logger.Logger
	}
)

func NewCreateUserCommandHandler(
	users ports.UsersRepository,
	audit ports.AuditRepository,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateUserCommandHandler {
	return decorator.ApplyCommandDecorators[CreateUserCommand, *model.User](
		createUserCommandHandler{users: users, audit: audit, logger: log},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createUserCommandHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*model.User, error) {
	if err := validateUserInput(cmd.Name, cmd.Email); err != nil {
		return nil, err
	}

	user := model.NewUser(cmd.Name, cmd.Email)

	// The password is optional, accounts without one cannot authenticate.
	if cmd.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}

		user.PasswordHash = string(hash)
	}

	if err := h.users.Create(ctx, user); err != nil {
		return nil, err
	}

	recordAudit(ctx, h.audit, h.logger, &user.ID, model.AuditActionCreateUser,
		fmt.Sprintf("Created user: %s", user.Email), cmd.ClientIP)

	return user, nil
}
