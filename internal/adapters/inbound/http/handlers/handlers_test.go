package handlers_test

import (
	"context"
	"sync"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/internal/infrastructure"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/healthcheck"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics/noop"
)

// memoryUsersRepository is an in-memory stand-in for the postgres repository.
type memoryUsersRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemoryUsersRepository() *memoryUsersRepository {
	return &memoryUsersRepository{users: make(map[string]*model.User)}
}

func (m *memoryUsersRepository) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return model.ErrDuplicateEmail
		}
	}

	clone := *user
	m.users[user.ID.String()] = &clone

	return nil
}

func (m *memoryUsersRepository) FetchByID(_ context.Context, id model.UserID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id.String()]
	if !ok || !user.IsActive {
		return nil, model.ErrUserNotFound
	}

	clone := *user

	return &clone, nil
}

func (m *memoryUsersRepository) List(_ context.Context, filter model.UserFilter) (*model.UserList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := make([]*model.User, 0, len(m.users))
	for _, user := range m.users {
		if user.IsActive {
			clone := *user
			active = append(active, &clone)
		}
	}

	total := uint(len(active))
	pages := (total + filter.PerPage - 1) / filter.PerPage

	return &model.UserList{
		Users: active,
		Pagination: model.Pagination{
			Page:        filter.Page,
			PerPage:     filter.PerPage,
			TotalItems:  total,
			TotalPages:  pages,
			HasNext:     filter.Page < pages,
			HasPrevious: filter.Page > 1,
		},
	}, nil
}

func (m *memoryUsersRepository) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID.String()]
	if !ok || !existing.IsActive {
		return model.ErrUserNotFound
	}

	for id, existing := range m.users {
		if id != user.ID.String() && existing.Email == user.Email {
			return model.ErrDuplicateEmail
		}
	}

	clone := *user
	m.users[user.ID.String()] = &clone

	return nil
}

func (m *memoryUsersRepository) Delete(_ context.Context, id model.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id.String()]
	if !ok || !user.IsActive {
		return model.ErrUserNotFound
	}

	user.IsActive = false

	return nil
}

type memoryAuditRepository struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
}

func (m *memoryAuditRepository) Record(_ context.Context, entry *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)

	return nil
}

// stubAggregator hands back a canned report regardless of context.
type stubAggregator struct {
	report healthcheck.Report
}

func (s *stubAggregator) Aggregate(context.Context) healthcheck.Report {
	return s.report
}

func newTestApplication(health, observability *stubAggregator) (*usecases.Application, *memoryUsersRepository) {
	users := newMemoryUsersRepository()

	app := usecases.NewApplication(
		users,
		&memoryAuditRepository{},
		health,
		observability,
		logger.NewTestLogger(),
		noop.NewMetricsClient(),
		infrastructure.NewNoopTracerProvider(),
	)

	return app, users
}
