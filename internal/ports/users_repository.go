package ports

import (
	"context"

	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
)

type (
	Saver interface {
		// Create stores a new user. It returns model.ErrDuplicateEmail when
		// the email is already registered.
		Create(ctx context.Context, user *model.User) error
	}

	Fetcher interface {
		// FetchByID retrieves a user by its ID.
		FetchByID(ctx context.Context, id model.UserID) (*model.User, error)
	}

	Finder interface {
		// List retrieves a paginated list of active users.
		List(ctx context.Context, filter model.UserFilter) (*model.UserList, error)
	}

	Updater interface {
		// Update persists changes to an existing user.
		Update(ctx context.Context, user *model.User) error
	}

	Deleter interface {
		// Delete soft deletes a user by marking it inactive.
		Delete(ctx context.Context, id model.UserID) error
	}

	// UsersRepository defines the interface for user persistence operations.
	UsersRepository interface {
		Saver
		Fetcher
		Finder
		Updater
		Deleter
	}
)
