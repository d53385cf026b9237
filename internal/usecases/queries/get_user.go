package queries

import (
	"context"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/decorator"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	GetUserQuery struct {
		ID model.UserID
	}

	GetUserQueryHandler = decorator.QueryHandler[GetUserQuery, *model.User]

	getUserQueryHandler struct {
		users ports.UsersRepository
	}
)

func NewGetUserQueryHandler(
	users ports.UsersRepository,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) GetUserQueryHandler {
	return decorator.ApplyQueryDecorators[GetUserQuery, *model.User](
		getUserQueryHandler{users: users},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h getUserQueryHandler) Execute(ctx context.Context, query GetUserQuery) (*model.User, error) {
	return h.users.FetchByID(ctx, query.ID)
}
