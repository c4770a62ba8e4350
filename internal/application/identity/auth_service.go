package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/infrastructure/auth"
)

// AuthService handles authentication and user provisioning
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
	now        func() time.Time
}

// AuthServiceOption configures the auth service
type AuthServiceOption func(*AuthService)

// WithAuthClock overrides the clock, used by tests
func WithAuthClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.UserRepository, jwtService *auth.JWTService, logger *zap.Logger, opts ...AuthServiceOption) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginInput contains login credentials
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult contains the issued token and the authenticated user
type LoginResult struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the user read model
type UserResponse struct {
	ID                  uuid.UUID   `json:"id"`
	KreditorID          uuid.UUID   `json:"kreditor_id"`
	Username            string      `json:"username"`
	Email               string      `json:"email,omitempty"`
	DisplayName         string      `json:"display_name,omitempty"`
	Role                string      `json:"role"`
	Status              string      `json:"status"`
	LinkedDebtorID      *uuid.UUID  `json:"linked_debtor_id,omitempty"`
	AssignedKreditorIDs []uuid.UUID `json:"assigned_kreditor_ids,omitempty"`
	LastLoginAt         *time.Time  `json:"last_login_at,omitempty"`
}

// CreateUserInput contains input for admin user provisioning
type CreateUserInput struct {
	KreditorID  uuid.UUID `json:"kreditor_id" binding:"required"`
	Username    string    `json:"username" binding:"required,min=3,max=100"`
	Password    string    `json:"password" binding:"required,min=8"`
	Email       string    `json:"email" binding:"omitempty,email"`
	DisplayName string    `json:"display_name" binding:"omitempty,max=200"`
	Role        string    `json:"role" binding:"required"`
}

// Login authenticates a user and issues a token. Unknown usernames and
// wrong passwords produce the same error so enumeration is not possible.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("Login attempt for unknown user", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CheckPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.IsActive() {
		s.logger.Warn("Login attempt for inactive account",
			zap.String("username", input.Username),
			zap.String("status", string(user.Status)))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		KreditorID: user.TenantID,
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Not fatal for the login itself
		s.logger.Error("Failed to record login timestamp", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()))

	return &LoginResult{
		Token:     token.Token,
		TokenType: token.TokenType,
		ExpiresAt: token.ExpiresAt,
		User:      toUserResponse(user),
	}, nil
}

// CreateUser provisions a new active user. Only ADMIN actors may call it.
func (s *AuthService) CreateUser(ctx context.Context, actorRole identity.Role, input CreateUserInput) (*UserResponse, error) {
	if actorRole != identity.RoleAdmin {
		return nil, shared.NewDomainError("UNAUTHORIZED_ROLE", "Only administrators can create users")
	}

	role := identity.Role(input.Role)
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role is not valid")
	}

	if existing, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_USERNAME", "Username is already taken")
	}

	user, err := identity.NewActiveUser(input.KreditorID, input.Username, input.Password, role)
	if err != nil {
		return nil, err
	}
	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()),
		zap.String("kreditor_id", user.TenantID.String()))

	resp := toUserResponse(user)
	return &resp, nil
}

// GetUser loads a user by ID
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "User not found")
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// AssignAgentToKreditor adds a creditor to an agent's portfolio
func (s *AuthService) AssignAgentToKreditor(ctx context.Context, actorRole identity.Role, agentID, kreditorID uuid.UUID) error {
	if actorRole != identity.RoleAdmin {
		return shared.NewDomainError("UNAUTHORIZED_ROLE", "Only administrators can manage assignments")
	}

	user, err := s.userRepo.FindByID(ctx, agentID)
	if err != nil {
		return shared.NewDomainError(shared.CodeNotFound, "User not found")
	}
	if err := user.AssignKreditor(kreditorID); err != nil {
		return err
	}
	return s.userRepo.SaveWithLock(ctx, user)
}

func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                  u.ID,
		KreditorID:          u.TenantID,
		Username:            u.Username,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		Role:                u.Role.String(),
		Status:              string(u.Status),
		LinkedDebtorID:      u.LinkedDebtorID,
		AssignedKreditorIDs: u.AssignedKreditorIDs,
		LastLoginAt:         u.LastLoginAt,
	}
}
