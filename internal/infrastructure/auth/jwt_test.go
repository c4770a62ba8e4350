package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:          "test-secret-key-at-least-32-chars",
		TokenExpiration: 8 * time.Hour,
		Issuer:          "test-issuer",
	}
	return NewJWTService(cfg)
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		KreditorID: uuid.New(),
		UserID:     uuid.New(),
		Username:   "sachbearbeiter1",
		Role:       identity.RoleAgent,
	}
}

func TestNewJWTService(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "test-secret",
		TokenExpiration: 15 * time.Minute,
		Issuer:          "test-issuer",
	}

	svc := NewJWTService(cfg)

	assert.NotNil(t, svc)
	assert.Equal(t, []byte(cfg.Secret), svc.secret)
	assert.Equal(t, cfg.TokenExpiration, svc.expiration)
	assert.Equal(t, cfg.Issuer, svc.issuer)
}

func TestGenerateToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.GenerateToken(input)

	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))
}

func TestValidateToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.GenerateToken(input)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.Token)

	require.NoError(t, err)
	assert.Equal(t, input.KreditorID.String(), claims.KreditorID)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.Username, claims.Username)
	assert.Equal(t, identity.RoleAgent, claims.GetRole())
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "test-secret-key-at-least-32-chars",
		TokenExpiration: -1 * time.Hour, // Already expired
		Issuer:          "test-issuer",
	}
	svc := NewJWTService(cfg)

	token, err := svc.GenerateToken(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token.Token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateToken("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := newTestJWTService().GenerateToken(newTestInput())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:          "a-completely-different-secret-key",
		TokenExpiration: 8 * time.Hour,
		Issuer:          "test-issuer",
	})

	_, err = other.ValidateToken(token.Token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_UnknownRole(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	input.Role = identity.Role("AUDITOR")

	token, err := svc.GenerateToken(input)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token.Token)

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestClaimsUUIDAccessors(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.GenerateToken(input)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.Token)
	require.NoError(t, err)

	kreditorID, err := claims.GetKreditorUUID()
	require.NoError(t, err)
	assert.Equal(t, input.KreditorID, kreditorID)

	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userID)
}
