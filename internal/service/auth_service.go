package service

import (
	"context"
	"errors"
	"fmt"

	"labtrack-data/internal/domain"
	"labtrack-data/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is deliberately the same for unknown usernames and
// wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Identity is the authenticated caller, resolved once per request.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type AuthService struct {
	users  repository.UsersRepository
	logger *zap.Logger
}

func NewAuthService(users repository.UsersRepository, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Login verifies username+password and returns the session identity.
func (s *AuthService) Login(ctx context.Context, username, password string) (Identity, error) {
	if username == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Login failed: unknown username",
				zap.String("username", username),
			)
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.logger.Warn("Login failed: wrong password",
			zap.String("username", username),
		)
		return Identity{}, ErrInvalidCredentials
	}

	s.logger.Info("Login successful",
		zap.String("username", username),
		zap.Bool("is_admin", user.IsAdmin),
	)
	return Identity{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}

// Register creates a new user account. Duplicate usernames surface as
// repository.ErrDuplicateKey.
func (s *AuthService) Register(ctx context.Context, username, password string, isAdmin bool) (Identity, error) {
	verr := &ValidationError{}
	if username == "" {
		verr.Add("username", "username is required")
	}
	if password == "" {
		verr.Add("password", "password is required")
	}
	if len(verr.Fields) > 0 {
		return Identity{}, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.users.CreateUser(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		return Identity{}, err
	}

	s.logger.Info("User registered",
		zap.String("username", username),
		zap.Bool("is_admin", isAdmin),
	)
	return Identity{UserID: id, Username: username, IsAdmin: isAdmin}, nil
}

// SetPassword replaces a user's password hash.
func (s *AuthService) SetPassword(ctx context.Context, userID int64, password string) error {
	if password == "" {
		return NewValidationError("password", "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Info("Password changed", zap.Int64("user_id", userID))
	return nil
}
