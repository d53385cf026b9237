package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionListUsers  = "LIST_USERS"
	AuditActionCreateUser = "CREATE_USER"
	AuditActionUpdateUser = "UPDATE_USER"
	AuditActionDeleteUser = "DELETE_USER"

	AuditResourceUsers = "users"
)

// AuditEntry records who did what against which resource. UserID is nil for
// actions not tied to a stored user, such as failed creations.
type AuditEntry struct {
	ID        uuid.UUID
	UserID    *UserID
	Action    string
	Resource  string
	Details   string
	IPAddress string
	TraceID   string
	Timestamp time.Time
}

func NewAuditEntry(action, resource string) *AuditEntry {
	return &AuditEntry{
		ID:        uuid.Must(uuid.NewV7()),
		Action:    action,
		Resource:  resource,
		Timestamp: time.Now().UTC(),
	}
}
