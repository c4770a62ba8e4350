package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
// Implementations must hydrate AssignedKreditorIDs for AGENT users.
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByRole finds all users with the given role
	FindByRole(ctx context.Context, role Role) ([]User, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, user *User) error
}
