package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkasso/backend/internal/domain/shared"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a platform user. Its role decides which cases it may see
// and which operations it may invoke. The creditor/debtor links are plain
// identifiers resolved by the repository, never navigable object graphs.
type User struct {
	shared.TenantAggregateRoot
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	Status       UserStatus
	// LinkedDebtorID links a DEBTOR user to its debtor record.
	LinkedDebtorID *uuid.UUID
	// AssignedKreditorIDs is the agent-to-creditor assignment set for
	// AGENT users. Loaded by the repository from a join table.
	AssignedKreditorIDs []uuid.UUID
	LastLoginAt         *time.Time
}

// NewUser creates a new user with required fields.
// For CLIENT users the tenant is the creditor they belong to.
func NewUser(tenantID uuid.UUID, username, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role is not valid")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:        passwordHash,
		Role:                role,
		Status:              UserStatusPending,
		AssignedKreditorIDs: make([]uuid.UUID, 0),
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// NewActiveUser creates a new user that is immediately active
func NewActiveUser(tenantID uuid.UUID, username, password string, role Role) (*User, error) {
	user, err := NewUser(tenantID, username, password, role)
	if err != nil {
		return nil, err
	}
	user.Status = UserStatusActive
	return user, nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !emailRegex.MatchString(email) {
			return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
		}
	}

	u.Email = email
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// LinkDebtor links a DEBTOR user to its debtor record
func (u *User) LinkDebtor(debtorID uuid.UUID) error {
	if u.Role != RoleDebtor {
		return shared.NewDomainError("INVALID_ROLE", "Only DEBTOR users can be linked to a debtor")
	}
	if debtorID == uuid.Nil {
		return shared.NewDomainError("INVALID_DEBTOR", "Debtor ID cannot be empty")
	}

	u.LinkedDebtorID = &debtorID
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// AssignKreditor adds a creditor to an AGENT user's assignment set.
// Assigning an already-assigned creditor is a no-op.
func (u *User) AssignKreditor(kreditorID uuid.UUID) error {
	if u.Role != RoleAgent {
		return shared.NewDomainError("INVALID_ROLE", "Only AGENT users carry creditor assignments")
	}
	if kreditorID == uuid.Nil {
		return shared.NewDomainError("INVALID_KREDITOR", "Kreditor ID cannot be empty")
	}

	for _, id := range u.AssignedKreditorIDs {
		if id == kreditorID {
			return nil
		}
	}

	u.AssignedKreditorIDs = append(u.AssignedKreditorIDs, kreditorID)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// UnassignKreditor removes a creditor from the assignment set
func (u *User) UnassignKreditor(kreditorID uuid.UUID) {
	for i, id := range u.AssignedKreditorIDs {
		if id == kreditorID {
			u.AssignedKreditorIDs = append(u.AssignedKreditorIDs[:i], u.AssignedKreditorIDs[i+1:]...)
			u.UpdatedAt = time.Now()
			u.IncrementVersion()
			return
		}
	}
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword updates the password hash after validating the new password
func (u *User) ChangePassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Activate marks a pending user active
func (u *User) Activate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("INVALID_STATE", "Deactivated users cannot be activated")
	}
	u.Status = UserStatusActive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Deactivate deactivates the user
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// RecordLogin records a successful login timestamp
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = time.Now()
}

// IsActive returns true if the user may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 || len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be between 3 and 100 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt input limit
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
