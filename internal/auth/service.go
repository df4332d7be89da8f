package auth

import (
	"context"
	"errors"
	"fmt"

	"bistrobook/internal/domain"
	"bistrobook/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users  repository.UserRepository
	tokens *TokenManager
}

func NewService(users repository.UserRepository, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login verifies credentials against the users table and returns a session
// token. Wrong email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.Validationf("email and password are required")
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	return s.tokens.Generate(user.ID, user.Role)
}
