package repos_test

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/ramisettybhargavi/devsecops-backend/internal/adapters/repos"
	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

const auditInsertSQL = `INSERT INTO audit_logs (id,user_id,action,resource,details,ip_address,trace_id,timestamp) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

func runAuditRepoTest(
	t *testing.T,
	setupMock func(pgxmock.PgxPoolIface),
	testFn func(*testing.T, *repos.AuditRepository),
) {
	t.Helper()
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	setupMock(mock)

	log := logger.NewBufferedTestLogger(&bytes.Buffer{})
	repo := repos.NewAuditRepository(mock, log)
	testFn(t, repo)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_Record(t *testing.T) {
	t.Parallel()

	actorID := model.NewUserID()

	cases := []struct {
		name        string
		entry       *model.AuditEntry
		setupMock   func(mock pgxmock.PgxPoolIface, entry *model.AuditEntry)
		expectedErr error
	}{
		{
			name: "entry attributed to a user",
			entry: func() *model.AuditEntry {
				entry := model.NewAuditEntry(model.AuditActionCreateUser, model.AuditResourceUsers)
				entry.UserID = &actorID
				entry.Details = "Created user: jane.doe@example.com"
				entry.IPAddress = "203.0.113.7"
				entry.TraceID = "abc-123"

				return entry
			}(),
			setupMock: func(mock pgxmock.PgxPoolIface, entry *model.AuditEntry) {
				mock.ExpectExec(regexp.QuoteMeta(auditInsertSQL)).
					WithArgs(
						entry.ID.String(),
						actorID.String(),
						entry.Action,
						entry.Resource,
						entry.Details,
						entry.IPAddress,
						entry.TraceID,
						entry.Timestamp,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "entry without a user stores NULL",
			entry: func() *model.AuditEntry {
				entry := model.NewAuditEntry(model.AuditActionListUsers, model.AuditResourceUsers)
				entry.Details = "Listed users page 1"
				entry.TraceID = "abc-123"

				return entry
			}(),
			setupMock: func(mock pgxmock.PgxPoolIface, entry *model.AuditEntry) {
				mock.ExpectExec(regexp.QuoteMeta(auditInsertSQL)).
					WithArgs(
						entry.ID.String(),
						nil,
						entry.Action,
						entry.Resource,
						entry.Details,
						entry.IPAddress,
						entry.TraceID,
						entry.Timestamp,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name:  "database error returns wrapped ErrDatabaseQuery",
			entry: model.NewAuditEntry(model.AuditActionDeleteUser, model.AuditResourceUsers),
			setupMock: func(mock pgxmock.PgxPoolIface, entry *model.AuditEntry) {
				mock.ExpectExec(regexp.QuoteMeta(auditInsertSQL)).
					WithArgs(
						entry.ID.String(),
						nil,
						entry.Action,
						entry.Resource,
						entry.Details,
						entry.IPAddress,
						entry.TraceID,
						entry.Timestamp,
					).
					WillReturnError(errors.New("connection refused"))
			},
			expectedErr: model.ErrDatabaseQuery,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runAuditRepoTest(t, func(mock pgxmock.PgxPoolIface) {
				tc.setupMock(mock, tc.entry)
			}, func(t *testing.T, repo *repos.AuditRepository) {
				err := repo.Record(t.Context(), tc.entry)

				if tc.expectedErr != nil {
					require.ErrorIs(t, err, tc.expectedErr)

					return
				}

				require.NoError(t, err)
			})
		})
	}
}
