package identity

import (
	"github.com/inkasso/backend/internal/domain/shared"
)

// Event types for the identity domain
const (
	EventTypeUserCreated = "identity.user.created"
)

// UserCreatedEvent is raised when a new user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, "User", u.ID, u.TenantID),
		Username:        u.Username,
		Role:            u.Role,
	}
}
