package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/core/tx"
	"laluna/pkg/logger"
)

// Service provides authentication and user provisioning.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, txManager tx.Manager, jwtService *JWTService) *Service {
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
	}
}

// Login verifies credentials and issues a bearer token.
// Unknown, inactive and wrong-password cases share one error.
func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.Active {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn(ctx, "failed to record last login", logger.UserID(user.ID.String()), logger.Err(err))
	} else {
		user.LastLoginAt = &now
	}

	logger.Info(ctx, "user logged in", logger.UserID(user.ID.String()), "username", user.Username)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Verify returns the active user behind a token subject.
func (s *Service) Verify(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("user not found or inactive")
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperror.NewUnauthorized("user not found or inactive")
	}
	return user, nil
}

// CreateUser provisions a new account. Role defaults to salesperson.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = RoleSalesperson
	}
	if !in.Role.IsValid() {
		return nil, apperror.NewInvalidInput("role", "role must be admin or salesperson")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(in.Username, string(hash), in.Role)
	user.Name = in.Name
	user.Email = in.Email

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if exists {
			return apperror.NewConflict("username already exists").WithDetail("username", user.Username)
		}
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user created", logger.UserID(user.ID.String()), "username", user.Username, "role", user.Role)
	return user, nil
}

// ListUsers returns active users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.userRepo.ListActive(ctx)
}

// SeedAdmins upserts the given accounts keyed by username. Running it again
// resets passwords and roles without creating duplicates.
func (s *Service) SeedAdmins(ctx context.Context, users []SeedUser) (int, error) {
	prepared := make([]*User, 0, len(users))
	for _, su := range users {
		username := strings.TrimSpace(su.Username)
		if err := validateUsername(username); err != nil {
			return 0, err
		}
		if err := validatePassword(su.Password); err != nil {
			return 0, err
		}
		role := su.Role
		if role == "" {
			role = RoleAdmin
		}
		if !role.IsValid() {
			return 0, apperror.NewInvalidInput("role", "role must be admin or salesperson")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return 0, fmt.Errorf("hash password: %w", err)
		}
		u := NewUser(username, string(hash), role)
		if su.Name != "" {
			name := su.Name
			u.Name = &name
		}
		prepared = append(prepared, u)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, u := range prepared {
			if err := s.userRepo.Upsert(ctx, u); err != nil {
				return fmt.Errorf("upsert user %s: %w", u.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "admin accounts seeded", "count", len(prepared))
	return len(prepared), nil
}
