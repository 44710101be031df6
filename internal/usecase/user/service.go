package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"it-asset-dashboard/internal/config"
	domainUser "it-asset-dashboard/internal/domain/user"
	"it-asset-dashboard/internal/logger"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"

	"go.uber.org/zap"
)

// Service implements user use cases
type Service struct {
	userRepo domainUser.Repository
	jwt      config.JWTConfig
}

// NewService creates a new user service
func NewService(userRepo domainUser.Repository, jwtCfg config.JWTConfig) *Service {
	return &Service{
		userRepo: userRepo,
		jwt:      jwtCfg,
	}
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Username and password are required", err)
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Login attempt with unknown username",
				zap.String("username", req.Username),
				zap.String("event", "user_not_found"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		logger.Warn("Login attempt with invalid password",
			zap.Uint("user_id", user.ID),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, user.Username, user.Role, s.jwt.Secret, s.jwt.ExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role),
		zap.String("event", "login_success"),
	)

	return &AuthResponse{
		User:      ToUserResponse(user),
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, err
	}
	return ToUserResponse(user), nil
}

// EnsureAdmin creates the first admin account when the users table is empty.
// An empty username disables the bootstrap.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := utils.ValidatePassword(password); err != nil {
		return fmt.Errorf("bootstrap admin password rejected: %w", err)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domainUser.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domainUser.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}

	logger.Info("Bootstrap admin created",
		zap.Uint("user_id", admin.ID),
		zap.String("username", admin.Username),
		zap.String("event", "admin_bootstrapped"),
	)
	return nil
}
