package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/platform/id"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/user"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

// UserService owns account signup and role management.
type UserService struct {
	store       storage.UserStore
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewUserService creates a user account service.
func NewUserService(store storage.UserStore) *UserService {
	return &UserService{
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// Signup registers an account for email, defaulting the role.
//
// Signing up an email that already has an account returns the existing
// account with OutcomeAlreadyExists; nothing is overwritten.
func (s *UserService) Signup(ctx context.Context, input user.SignupInput) (user.User, Outcome, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return user.User{}, "", apperrors.New(apperrors.CodeUserEmailEmpty, "user email is required")
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, OutcomeAlreadyExists, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return user.User{}, "", fmt.Errorf("look up account: %w", err)
	}

	created, err := user.Create(input, s.clock, s.idGenerator)
	if err != nil {
		return user.User{}, "", err
	}
	if err := s.store.PutUser(ctx, created); err != nil {
		return user.User{}, "", fmt.Errorf("sign up: %w", err)
	}
	return created, OutcomeCreated, nil
}

// ListUsers returns all accounts, or only the one matching email when set.
func (s *UserService) ListUsers(ctx context.Context, email string) ([]user.User, error) {
	return s.store.ListUsers(ctx, strings.TrimSpace(email))
}

// SetRole overwrites the role of the user with the given id.
func (s *UserService) SetRole(ctx context.Context, userID, role string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return apperrors.New(apperrors.CodeUserRoleEmpty, "user role is required")
	}
	return s.store.SetUserRole(ctx, userID, role)
}
