package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/repository"
)

var (
	ErrEmailTaken   = errors.New("email is already registered")
	ErrUserNotFound = errors.New("user not found")
)

// UserService handles account registration and credential checks.
type UserService struct {
	users UserStore
	auth  *AuthService
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		auth:  auth,
		log:   log.With().Str("component", "user").Logger(),
	}
}

// Register creates an account with a hashed password.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	hash, err := s.auth.HashPassword(password)
	if errors.Is(err, ErrPasswordTooLong) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           model.NewID(),
		Name:         name,
		Email:        model.NormalizeEmail(email),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("User registered")
	return user, nil
}

// Authenticate returns the user whose credentials match.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns a user profile.
func (s *UserService) GetByID(ctx context.Context, id model.ID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
