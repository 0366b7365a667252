// Package services contains server-side business logic: account management,
// patient-record CRUD and QR token issuing.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/server/auth"
	"github.com/carechain/carechain/internal/server/config"
	"github.com/carechain/carechain/internal/server/models"
	"github.com/carechain/carechain/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// UserService handles signup, login and token verification.
type UserService struct {
	repo                        users.Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(repo users.Repository, cfg *config.Config) *UserService {
	return &UserService{
		repo:                        repo,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Signup creates a new clinician account. The password must be at least
// 8 characters long and contain a letter and a digit.
func (s *UserService) Signup(ctx context.Context, email, name, password string) (*models.User, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorEmailAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Email: email, Name: name, PasswordHash: string(hash), IsActive: true}
	u, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and mints an access token on success.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorInvalidCredentials
		}
		return "", nil, common.ErrorInternal
	}
	if !user.IsActive {
		return "", nil, common.ErrorInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, common.ErrorInvalidCredentials
	}

	token, err := auth.GenerateToken(user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}
	return token, user, nil
}

// Verify resolves an access token to its user. Unknown users and bad tokens
// both yield ErrorUnauthorized so callers cannot probe for accounts.
func (s *UserService) Verify(ctx context.Context, token string) (*models.User, error) {
	email, err := auth.GetEmailFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", common.ErrorWeakPassword)
	}
	var hasDigit, hasLetter bool
	for _, c := range password {
		switch {
		case unicode.IsDigit(c):
			hasDigit = true
		case unicode.IsLetter(c):
			hasLetter = true
		}
	}
	if !hasDigit {
		return fmt.Errorf("%w: must contain at least one digit", common.ErrorWeakPassword)
	}
	if !hasLetter {
		return fmt.Errorf("%w: must contain at least one letter", common.ErrorWeakPassword)
	}
	return nil
}
