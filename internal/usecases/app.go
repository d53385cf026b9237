package usecases

import (
	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases/commands"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases/queries"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		CreateUser commands.CreateUserCommandHandler
		UpdateUser commands.UpdateUserCommandHandler
		DeleteUser commands.DeleteUserCommandHandler
	}

	Queries struct {
		GetUser            queries.GetUserQueryHandler
		ListUsers          queries.ListUsersQueryHandler
		FetchHealth        queries.FetchHealthQueryHandler
		FetchObservability queries.FetchObservabilityQueryHandler
	}

	Application struct {
		Commands Commands
		Queries  Queries
	}
)

// NewApplication wires the command and query handlers. The health aggregator
// covers every dependency including the primary store, the observability
// aggregator covers the observability backends only.
func NewApplication(
	usersRepo ports.UsersRepository,
	auditRepo ports.AuditRepository,
	healthAggregator ports.HealthAggregator,
	observabilityAggregator ports.HealthAggregator,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *Application {
	return &Application{
		Commands: Commands{
			CreateUser: commands.NewCreateUserCommandHandler(usersRepo, auditRepo, log, metricsClient, tracerProvider),
			UpdateUser: commands.NewUpdateUserCommandHandler(usersRepo, auditRepo, log, metricsClient, tracerProvider),
			DeleteUser: commands.NewDeleteUserCommandHandler(usersRepo, auditRepo, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			GetUser:            queries.NewGetUserQueryHandler(usersRepo, log, metricsClient, tracerProvider),
			ListUsers:          queries.NewListUsersQueryHandler(usersRepo, auditRepo, log, metricsClient, tracerProvider),
			FetchHealth:        queries.NewFetchHealthQueryHandler(healthAggregator, log, metricsClient, tracerProvider),
			FetchObservability: queries.NewFetchObservabilityQueryHandler(observabilityAggregator, log, metricsClient, tracerProvider),
		},
	}
}
