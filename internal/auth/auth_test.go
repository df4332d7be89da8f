package auth

import (
	"context"
	"testing"
	"time"

	"bistrobook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	token, err := tokens.Generate(9, "admin")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tokens.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "bistrobook", claims.Issuer)
}

func TestTokenManager_Parse_WrongSecret(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, err := tokens.Generate(9, "admin")
	assert.NoError(t, err)

	claims, err := other.Parse(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenManager_Parse_Expired(t *testing.T) {
	tokens := NewTokenManager("test-secret", -time.Minute)

	token, err := tokens.Generate(9, "admin")
	assert.NoError(t, err)

	claims, err := tokens.Parse(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	users := &MockUserRepository{}
	tokens := NewTokenManager("test-secret", time.Hour)
	service := NewService(users, tokens)

	ctx := context.Background()
	users.On("ByEmail", ctx, "admin@example.com").
		Return(&domain.User{ID: 1, Email: "admin@example.com", PasswordHash: string(hash), Role: "admin"}, nil)

	token, err := service.Login(ctx, "admin@example.com", "hunter2")
	assert.NoError(t, err)

	claims, err := tokens.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)

	users := &MockUserRepository{}
	service := NewService(users, NewTokenManager("test-secret", time.Hour))

	ctx := context.Background()
	users.On("ByEmail", ctx, "admin@example.com").
		Return(&domain.User{ID: 1, PasswordHash: string(hash)}, nil)

	token, err := service.Login(ctx, "admin@example.com", "wrong")
	assert.Empty(t, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	users := &MockUserRepository{}
	service := NewService(users, NewTokenManager("test-secret", time.Hour))

	ctx := context.Background()
	users.On("ByEmail", ctx, "nobody@example.com").
		Return(nil, domain.NotFoundf("user not found"))

	token, err := service.Login(ctx, "nobody@example.com", "hunter2")
	assert.Empty(t, token)
	// Unknown email reads the same as a wrong password.
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Login_MissingFields(t *testing.T) {
	service := NewService(nil, nil)

	_, err := service.Login(context.Background(), "", "hunter2")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.Login(context.Background(), "admin@example.com", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
