package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
)

const usersTable = "users"

// uniqueViolationCode is the PostgreSQL error code for unique constraint violations.
const uniqueViolationCode = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type (
	// PoolOps defines the interface for database operations.
	// This allows injecting mock implementations for testing.
	PoolOps interface {
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Ping(ctx context.Context) error
	}

	// UsersRepository handles user persistence operations.
	UsersRepository struct {
		pool    PoolOps
		scanner Scanner
		logger  logger.Logger
	}

	userRow struct {
		ID           string    `db:"id"`
		Name         string    `db:"name"`
		Email        string    `db:"email"`
		PasswordHash string    `db:"password_hash"`
		IsActive     bool      `db:"is_active"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}

	userRowWithCount struct {
		userRow
		TotalCount uint `db:"total_count"`
	}
)

// NewUsersRepository creates a new UsersRepository with the given dependencies.
func NewUsersRepository(pool PoolOps, scanner Scanner, log logger.Logger) *UsersRepository {
	return &UsersRepository{
		pool:    pool,
		scanner: scanner,
		logger:  log,
	}
}

func (r *UsersRepository) Create(ctx context.Context, user *model.User) error {
	query, args, err := psql.Insert(usersTable).
		Columns("id", "name", "email", "password_hash", "is_active", "created_at", "updated_at").
		Values(
			user.ID.String(),
			user.Name,
			user.Email,
			user.PasswordHash,
			user.IsActive,
			user.CreatedAt,
			user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateEmail
		}

		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	return nil
}

// FetchByID retrieves an active user. Soft deleted users are reported as
// not found, same as List and Delete.
func (r *UsersRepository) FetchByID(ctx context.Context, id model.UserID) (*model.User, error) {
	query, args, err := psql.Select("id", "name", "email", "password_hash", "is_active", "created_at", "updated_at").
		From(usersTable).
		Where(sq.Eq{"id": id.String(), "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var row userRow
	if err := r.scanner.ScanOne(&row, rows); err != nil {
		if r.scanner.IsNotFound(err) {
			return nil, model.ErrUserNotFound
		}

		return nil, fmt.Errorf("user with ID %s not found: %w", id.String(), err)
	}

	return r.convertRowToUser(row)
}

// List returns active users ordered by creation time, newest first, together
// with the pagination envelope for the requested page.
func (r *UsersRepository) List(ctx context.Context, filter model.UserFilter) (*model.UserList, error) {
	filter = filter.Normalize()

	query, args, err := psql.Select(
		"id", "name", "email", "password_hash", "is_active", "created_at", "updated_at",
		"COUNT(*) OVER() as total_count",
	).
		From(usersTable).
		Where(sq.Eq{"is_active": true}).
		OrderBy("created_at DESC").
		Limit(uint64(filter.PerPage)).
		Offset(uint64((filter.Page - 1) * filter.PerPage)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var userRows []userRowWithCount
	if err := r.scanner.ScanAll(&userRows, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	var totalItems uint
	if len(userRows) > 0 {
		totalItems = userRows[0].TotalCount
	}

	users := make([]*model.User, 0, len(userRows))
	for index := range userRows {
		user, err := r.convertRowToUser(userRows[index].userRow)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
		}
		users = append(users, user)
	}

	totalPages := totalItems / filter.PerPage
	if totalItems%filter.PerPage != 0 {
		totalPages++
	}

	return &model.UserList{
		Users: users,
		Pagination: model.Pagination{
			Page:        filter.Page,
			PerPage:     filter.PerPage,
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			HasNext:     filter.Page < totalPages,
			HasPrevious: filter.Page > 1,
		},
	}, nil
}

// Update persists changes to an active user. A soft deleted target is
// reported as not found, the update cannot resurrect it.
func (r *UsersRepository) Update(ctx context.Context, user *model.User) error {
	query, args, err := psql.Update(usersTable).
		Set("name", user.Name).
		Set("email", user.Email).
		Set("is_active", user.IsActive).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID.String(), "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateEmail
		}

		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// Delete marks the user inactive. Rows are kept so that the audit trail
// stays attributable.
func (r *UsersRepository) Delete(ctx context.Context, id model.UserID) error {
	query, args, err := psql.Update(usersTable).
		Set("is_active", false).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id.String(), "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

func (r *UsersRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UsersRepository) convertRowToUser(row userRow) (*model.User, error) {
	id, err := model.ParseUserID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	return &model.User{
		ID:           id,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
