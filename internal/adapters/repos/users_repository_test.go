package repos_test

import (
	"bytes"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/ramisettybhargavi/devsecops-backend/internal/adapters/repos"
	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

const userColumnsSQL = "id, name, email, password_hash, is_active, created_at, updated_at"

func runRepoTest(
	t *testing.T,
	setupMock func(pgxmock.PgxPoolIface),
	testFn func(*testing.T, *repos.UsersRepository),
) {
	t.Helper()
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	setupMock(mock)

	log := logger.NewBufferedTestLogger(&bytes.Buffer{})
	repo := repos.NewUsersRepository(mock, repos.NewPgxScanner(), log)
	testFn(t, repo)

	require.NoError(t, mock.ExpectationsWereMet())
}

func uniqueViolationErr() error {
	return &pgconn.PgError{
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "users_email_key"`,
		ConstraintName: "users_email_key",
	}
}

func newStoredUser(name, email string) *model.User {
	user := model.NewUser(name, email)
	user.PasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye"

	return user
}

func TestUsersRepository_Create(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		user        *model.User
		setupMock   func(mock pgxmock.PgxPoolIface, user *model.User)
		expectedErr error
	}{
		{
			name: "successfully create user",
			user: newStoredUser("Jane Doe", "jane.doe@example.com"),
			setupMock: func(mock pgxmock.PgxPoolIface, user *model.User) {
				mock.ExpectExec(regexp.QuoteMeta(
					`INSERT INTO users (id,name,email,password_hash,is_active,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				)).
					WithArgs(
						user.ID.String(),
						user.Name,
						user.Email,
						user.PasswordHash,
						user.IsActive,
						user.CreatedAt,
						user.UpdatedAt,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation returns ErrDuplicateEmail",
			user: newStoredUser("Jane Doe", "jane.doe@example.com"),
			setupMock: func(mock pgxmock.PgxPoolIface, user *model.User) {
				mock.ExpectExec(regexp.QuoteMeta(
					`INSERT INTO users (id,name,email,password_hash,is_active,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				)).
					WithArgs(
						user.ID.String(),
						user.Name,
						user.Email,
						user.PasswordHash,
						user.IsActive,
						user.CreatedAt,
						user.UpdatedAt,
					).
					WillReturnError(uniqueViolationErr())
			},
			expectedErr: model.ErrDuplicateEmail,
		},
		{
			name: "database error returns wrapped ErrDatabaseQuery",
			user: newStoredUser("Jane Doe", "jane.doe@example.com"),
			setupMock: func(mock pgxmock.PgxPoolIface, user *model.User) {
				mock.ExpectExec(regexp.QuoteMeta(
					`INSERT INTO users (id,name,email,password_hash,is_active,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				)).
					WithArgs(
						user.ID.String(),
						user.Name,
						user.Email,
						user.PasswordHash,
						user.IsActive,
						user.CreatedAt,
						user.UpdatedAt,
					).
					WillReturnError(errors.New("connection refused"))
			},
			expectedErr: model.ErrDatabaseQuery,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
				tc.setupMock(mock, tc.user)
			}, func(t *testing.T, repo *repos.UsersRepository) {
				err := repo.Create(t.Context(), tc.user)

				if tc.expectedErr != nil {
					require.ErrorIs(t, err, tc.expectedErr)

					return
				}

				require.NoError(t, err)
			})
		})
	}
}

func TestUsersRepository_FetchByID(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	cases := []struct {
		name        string
		id          model.UserID
		setupMock   func(mock pgxmock.PgxPoolIface, id model.UserID)
		expectedErr error
		validate    func(*testing.T, *model.User)
	}{
		{
			name: "successfully fetch user",
			id:   model.NewUserID(),
			setupMock: func(mock pgxmock.PgxPoolIface, id model.UserID) {
				rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "is_active", "created_at", "updated_at"}).
					AddRow(id.String(), "Jane Doe", "jane.doe@example.com", "hash", true, now, now)
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT `+userColumnsSQL+` FROM users WHERE id = $1 AND is_active = $2 LIMIT 1`,
				)).
					WithArgs(id.String(), true).
					WillReturnRows(rows)
			},
			validate: func(t *testing.T, user *model.User) {
				require.Equal(t, "Jane Doe", user.Name)
				require.Equal(t, "jane.doe@example.com", user.Email)
				require.True(t, user.IsActive)
			},
		},
		{
			name: "missing user returns ErrUserNotFound",
			id:   model.NewUserID(),
			setupMock: func(mock pgxmock.PgxPoolIface, id model.UserID) {
				rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "is_active", "created_at", "updated_at"})
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT `+userColumnsSQL+` FROM users WHERE id = $1 AND is_active = $2 LIMIT 1`,
				)).
					WithArgs(id.String(), true).
					WillReturnRows(rows)
			},
			expectedErr: model.ErrUserNotFound,
		},
		{
			name: "soft deleted user returns ErrUserNotFound",
			id:   model.NewUserID(),
			setupMock: func(mock pgxmock.PgxPoolIface, id model.UserID) {
				// The is_active filter excludes the deactivated row, so the
				// query comes back empty rather than surfacing the user.
				rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "is_active", "created_at", "updated_at"})
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT `+userColumnsSQL+` FROM users WHERE id = $1 AND is_active = $2 LIMIT 1`,
				)).
					WithArgs(id.String(), true).
					WillReturnRows(rows)
			},
			expectedErr: model.ErrUserNotFound,
		},
		{
			name: "query error returns wrapped ErrDatabaseQuery",
			id:   model.NewUserID(),
			setupMock: func(mock pgxmock.PgxPoolIface, id model.UserID) {
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT `+userColumnsSQL+` FROM users WHERE id = $1 AND is_active = $2 LIMIT 1`,
				)).
					WithArgs(id.String(), true).
					WillReturnError(errors.New("connection reset"))
			},
			expectedErr: model.ErrDatabaseQuery,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
				tc.setupMock(mock, tc.id)
			}, func(t *testing.T, repo *repos.UsersRepository) {
				user, err := repo.FetchByID(t.Context(), tc.id)

				if tc.expectedErr != nil {
					require.ErrorIs(t, err, tc.expectedErr)

					return
				}

				require.NoError(t, err)
				require.Equal(t, tc.id, user.ID)
				tc.validate(t, user)
			})
		})
	}
}

func TestUsersRepository_List(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	listColumns := []string{"id", "name", "email", "password_hash", "is_active", "created_at", "updated_at", "total_count"}

	cases := []struct {
		name         string
		filter       model.UserFilter
		setupMock    func(mock pgxmock.PgxPoolIface)
		expectError  bool
		validateList func(*testing.T, *model.UserList)
	}{
		{
			name:   "first page with defaults",
			filter: model.DefaultUserFilter(),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(listColumns).
					AddRow(model.NewUserID().String(), "Jane Doe", "jane.doe@example.com", "hash", true, now, now, uint(2)).
					AddRow(model.NewUserID().String(), "John Smith", "john.smith@example.com", "hash", true, now, now, uint(2))
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT ` + userColumnsSQL + `, COUNT(*) OVER() as total_count FROM users WHERE is_active = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0`,
				)).
					WithArgs(true).
					WillReturnRows(rows)
			},
			validateList: func(t *testing.T, list *model.UserList) {
				require.Len(t, list.Users, 2)
				require.Equal(t, uint(1), list.Pagination.Page)
				require.Equal(t, uint(20), list.Pagination.PerPage)
				require.Equal(t, uint(2), list.Pagination.TotalItems)
				require.Equal(t, uint(1), list.Pagination.TotalPages)
				require.False(t, list.Pagination.HasNext)
				require.False(t, list.Pagination.HasPrevious)
			},
		},
		{
			name:   "middle page keeps both cursors",
			filter: model.UserFilter{Page: 2, PerPage: 1},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(listColumns).
					AddRow(model.NewUserID().String(), "John Smith", "john.smith@example.com", "hash", true, now, now, uint(3))
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT ` + userColumnsSQL + `, COUNT(*) OVER() as total_count FROM users WHERE is_active = $1 ORDER BY created_at DESC LIMIT 1 OFFSET 1`,
				)).
					WithArgs(true).
					WillReturnRows(rows)
			},
			validateList: func(t *testing.T, list *model.UserList) {
				require.Len(t, list.Users, 1)
				require.Equal(t, uint(3), list.Pagination.TotalItems)
				require.Equal(t, uint(3), list.Pagination.TotalPages)
				require.True(t, list.Pagination.HasNext)
				require.True(t, list.Pagination.HasPrevious)
			},
		},
		{
			name:   "oversized page size is capped",
			filter: model.UserFilter{Page: 1, PerPage: 500},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(listColumns)
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT ` + userColumnsSQL + `, COUNT(*) OVER() as total_count FROM users WHERE is_active = $1 ORDER BY created_at DESC LIMIT 100 OFFSET 0`,
				)).
					WithArgs(true).
					WillReturnRows(rows)
			},
			validateList: func(t *testing.T, list *model.UserList) {
				require.Empty(t, list.Users)
				require.Equal(t, uint(100), list.Pagination.PerPage)
			},
		},
		{
			name:   "empty table",
			filter: model.DefaultUserFilter(),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(listColumns)
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT ` + userColumnsSQL + `, COUNT(*) OVER() as total_count FROM users WHERE is_active = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0`,
				)).
					WithArgs(true).
					WillReturnRows(rows)
			},
			validateList: func(t *testing.T, list *model.UserList) {
				require.Empty(t, list.Users)
				require.Zero(t, list.Pagination.TotalItems)
				require.Zero(t, list.Pagination.TotalPages)
				require.False(t, list.Pagination.HasNext)
			},
		},
		{
			name:   "query error returns wrapped ErrDatabaseQuery",
			filter: model.DefaultUserFilter(),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(
					`SELECT ` + userColumnsSQL + `, COUNT(*) OVER() as total_count FROM users WHERE is_active = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0`,
				)).
					WithArgs(true).
					WillReturnError(errors.New("connection refused"))
			},
			expectError: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runRepoTest(t, tc.setupMock, func(t *testing.T, repo *repos.UsersRepository) {
				list, err := repo.List(t.Context(), tc.filter)

				if tc.expectError {
					require.ErrorIs(t, err, model.ErrDatabaseQuery)

					return
				}

				require.NoError(t, err)
				tc.validateList(t, list)
			})
		})
	}
}

func TestUsersRepository_Update(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		user        *model.User
		setupMock   func(mock pgxmock.PgxPoolIface, user *model.User)
		expectedErr error
	}{
		{
			name: "successfully update user",
			user: newStoredUser("Jane Doe", "jane.doe@example.com"),
			setupMock: func(mock pgxmock.PgxPoolIface, user *model.User) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE users SET name = $1, email = $2, is_active = $3, updated_at = $4 WHERE id = $5 AND is_active = $6`,
				)).
					WithArgs(user.Name, user.Email, user.IsActive, user.UpdatedAt, user.ID.String(), true).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "missing user returns ErrUserNotFound",
			user: newStoredUser("Jane Doe", "jane.doe@example.com"),
			setupMock: func(mock pgxmock.PgxPoolIface, user *model.User) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE users SET name = $1, email = $2, is_active = $3, updated_at = $4 WHERE id = $5 AND is_active = $6`,
				)).
					WithArgs(user.Name, user.Email, user.IsActive, user.UpdatedAt, user.ID.String(), true).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectedErr: model.ErrUserNotFound,
		},
		{
			name: "soft deleted target returns ErrUserNotFound",
			user: newStoredUser("Jane Doe", "jane.doe@example.com"),
			setupMock: func(mock pgxmock.PgxPoolIface, user *model.User) {
				// A deactivated row fails the is_active guard, so the update
				// touches nothing instead of resurrecting the user.
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE users SET name = $1, email = $2, is_active = $3, updated_at = $4 WHERE id = $5 AND is_active = $6`,
				)).
					WithArgs(user.Name, user.Email, user.IsActive, user.UpdatedAt, user.ID.String(), true).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectedErr: model.ErrUserNotFound,
		},
		{
			name: "email collision returns ErrDuplicateEmail",
			user: newStoredUser("Jane Doe", "taken@example.com"),
			setupMock: func(mock pgxmock.PgxPoolIface, user *model.User) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE users SET name = $1, email = $2, is_active = $3, updated_at = $4 WHERE id = $5 AND is_active = $6`,
				)).
					WithArgs(user.Name, user.Email, user.IsActive, user.UpdatedAt, user.ID.String(), true).
					WillReturnError(uniqueViolationErr())
			},
			expectedErr: model.ErrDuplicateEmail,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
				tc.setupMock(mock, tc.user)
			}, func(t *testing.T, repo *repos.UsersRepository) {
				err := repo.Update(t.Context(), tc.user)

				if tc.expectedErr != nil {
					require.ErrorIs(t, err, tc.expectedErr)

					return
				}

				require.NoError(t, err)
			})
		})
	}
}

func TestUsersRepository_Delete(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		setupMock   func(mock pgxmock.PgxPoolIface, id model.UserID)
		expectedErr error
	}{
		{
			name: "successfully deactivate user",
			setupMock: func(mock pgxmock.PgxPoolIface, id model.UserID) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3 AND is_active = $4`,
				)).
					WithArgs(false, pgxmock.AnyArg(), id.String(), true).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "already inactive user returns ErrUserNotFound",
			setupMock: func(mock pgxmock.PgxPoolIface, id model.UserID) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3 AND is_active = $4`,
				)).
					WithArgs(false, pgxmock.AnyArg(), id.String(), true).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectedErr: model.ErrUserNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := model.NewUserID()

			runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
				tc.setupMock(mock, id)
			}, func(t *testing.T, repo *repos.UsersRepository) {
				err := repo.Delete(t.Context(), id)

				if tc.expectedErr != nil {
					require.ErrorIs(t, err, tc.expectedErr)

					return
				}

				require.NoError(t, err)
			})
		})
	}
}

func TestUsersRepository_Ping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		setupMock   func(mock pgxmock.PgxPoolIface)
		expectError bool
	}{
		{
			name: "ping successful",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectPing()
			},
		},
		{
			name: "ping failed",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectPing().WillReturnError(errors.New("connection error"))
			},
			expectError: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runRepoTest(t, tc.setupMock, func(t *testing.T, repo *repos.UsersRepository) {
				err := repo.Ping(t.Context())

				if tc.expectError {
					require.Error(t, err)

					return
				}

				require.NoError(t, err)
			})
		})
	}
}
