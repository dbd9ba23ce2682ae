package service

import (
	"errors"
	"time"

	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"github.com/jmoreau/taskhive-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
)

type AuthService interface {
	Register(username, email, password string) (*model.User, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	RefreshToken(refreshToken string) (*util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) Register(username, email, password string) (*model.User, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"username": username,
		"email":    email,
	})

	// Check if email is taken
	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing email", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	// Check if username is taken
	existingUser, err = s.userRepo.FindByUsername(username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing username", err, map[string]interface{}{
			"username": username,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: username already exists", map[string]interface{}{
			"username": username,
		})
		return nil, ErrUsernameAlreadyExists
	}

	// Hash password
	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": username,
		"email":    email,
	})

	return user, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	// Find user by email
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	// Verify password
	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	// Generate tokens
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   email,
		})
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	return user, tokens, nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair. Access
// tokens are rejected here even though they carry the same claims shape.
func (s *authService) RefreshToken(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		logger.Warn("Token refresh failed: validation error", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrInvalidRefreshToken
	}

	if claims.TokenType != util.TokenTypeRefresh {
		logger.Warn("Token refresh failed: wrong token type", map[string]interface{}{
			"token_type": claims.TokenType,
			"user_id":    claims.UserID,
		})
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Token refresh failed: user no longer exists", map[string]interface{}{
				"user_id": claims.UserID,
			})
			return nil, ErrInvalidRefreshToken
		}
		logger.Error("Failed to fetch user for token refresh", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("Tokens refreshed successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	return tokens, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	logger.Debug("Fetching user by ID", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	return user, nil
}
