package model

import (
	"time"

	"github.com/google/uuid"
)

type UserID struct {
	uuid.UUID
}

func NewUserID() UserID {
	return UserID{UUID: uuid.Must(uuid.NewV7())}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}

	return UserID{UUID: id}, nil
}

func (u UserID) String() string {
	return u.UUID.String()
}

func (u UserID) IsZero() bool {
	return u.UUID == uuid.Nil
}

type User struct {
	ID           UserID
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(name, email string) *User {
	now := time.Now().UTC()

	return &User{
		ID:        NewUserID(),
		Name:      name,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) Update(name, email string) {
	u.Name = name
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
}

// Deactivate soft deletes the user. Deactivated users are excluded from
// listings but their rows and audit trail remain.
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
}

const (
	DefaultPageSize uint = 20
	MaxPageSize     uint = 100
)

type UserFilter struct {
	Page    uint
	PerPage uint
}

func DefaultUserFilter() UserFilter {
	return UserFilter{
		Page:    1,
		PerPage: DefaultPageSize,
	}
}

// Normalize fills missing paging values and caps the page size.
func (f UserFilter) Normalize() UserFilter {
	if f.Page == 0 {
		f.Page = 1
	}

	if f.PerPage == 0 {
		f.PerPage = DefaultPageSize
	}

	if f.PerPage > MaxPageSize {
		f.PerPage = MaxPageSize
	}

	return f
}

type Pagination struct {
	Page        uint
	PerPage     uint
	TotalItems  uint
	TotalPages  uint
	HasNext     bool
	HasPrevious bool
}

type UserList struct {
	Users      []*User
	Pagination Pagination
}
