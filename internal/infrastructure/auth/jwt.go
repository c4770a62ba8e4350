package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrTokenNotYetValid  = errors.New("token is not yet valid")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrMissingKreditorID = errors.New("missing kreditor_id in claims")
	ErrMissingUserID     = errors.New("missing user_id in claims")
	ErrInvalidRole       = errors.New("invalid role in claims")
)

// Claims represents custom JWT claims. KreditorID carries the tenant the
// user belongs to; the role string must match one of the identity roles.
type Claims struct {
	jwt.RegisteredClaims
	KreditorID string `json:"kreditor_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.TokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	KreditorID uuid.UUID
	UserID     uuid.UUID
	Username   string
	Role       identity.Role
}

// GeneratedToken is a signed token together with its expiry
type GeneratedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"` // Bearer
}

// GenerateToken generates a signed access token
func (s *JWTService) GenerateToken(input GenerateTokenInput) (*GeneratedToken, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		KreditorID: input.KreditorID.String(),
		UserID:     input.UserID.String(),
		Username:   input.Username,
		Role:       input.Role.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &GeneratedToken{
		Token:     signed,
		ExpiresAt: expiresAt,
		TokenType: "Bearer",
	}, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.KreditorID == "" {
		return nil, ErrMissingKreditorID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if !identity.Role(claims.Role).IsValid() {
		return nil, ErrInvalidRole
	}

	return claims, nil
}

// GetTokenExpiration returns the configured token lifetime
func (s *JWTService) GetTokenExpiration() time.Duration {
	return s.expiration
}

// GetKreditorUUID extracts and parses the kreditor ID from claims
func (c *Claims) GetKreditorUUID() (uuid.UUID, error) {
	return uuid.Parse(c.KreditorID)
}

// GetUserUUID extracts and parses the user ID from claims
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetRole returns the typed role from claims
func (c *Claims) GetRole() identity.Role {
	return identity.Role(c.Role)
}
