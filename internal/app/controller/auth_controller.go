package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoreau/taskhive-backend/internal/app/service"
	apperrors "github.com/jmoreau/taskhive-backend/internal/errors"
	"github.com/jmoreau/taskhive-backend/internal/middleware"
	"github.com/jmoreau/taskhive-backend/pkg/util"
)

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

func NewAuthController(authService service.AuthService, passwordResetService service.PasswordResetService) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid registration data")
		return
	}

	if err := util.ValidatePasswordStrength(req.Password); err != nil {
		log.Warn("Registration failed: weak password", map[string]interface{}{
			"email": req.Email,
		})
		apperrors.BadRequest(c, apperrors.ValidationWeakPassword,
			"Password must be at least 8 characters and contain a lowercase letter, an uppercase letter and a digit")
		return
	}

	user, err := ctrl.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			log.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Conflict(c, apperrors.AuthEmailExists, "An account with this email already exists")
			return
		}
		if errors.Is(err, service.ErrUsernameAlreadyExists) {
			log.Warn("Registration failed: username already taken", map[string]interface{}{
				"username": req.Username,
			})
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "This username is already taken")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid login data")
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Login failed: invalid credentials", map[string]interface{}{
				"email": req.Email,
			})
			// One generic rejection for wrong password and unknown email alike
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials,
				"Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"tokens": tokens,
	})
}

// RefreshToken exchanges a refresh token for a new token pair
// POST /api/v1/auth/refresh
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid refresh request")
		return
	}

	tokens, err := ctrl.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			log.Warn("Token refresh rejected")
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid,
				"Invalid refresh token")
			return
		}
		log.Error("Token refresh failed", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": tokens,
	})
}

// ForgotPassword starts the password reset flow
// POST /api/v1/auth/forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid email address")
		return
	}

	if err := ctrl.passwordResetService.RequestReset(req.Email); err != nil {
		log.Error("Password reset request failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	// The acknowledgement is identical whether or not the account exists
	c.JSON(http.StatusOK, gin.H{
		"message": "If an account with this email exists, a password reset link has been sent",
	})
}

// ValidateResetToken checks a reset token without consuming it
// GET /api/v1/auth/reset-password/validate
func (ctrl *AuthController) ValidateResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Reset token is required")
		return
	}

	if err := ctrl.passwordResetService.ValidateToken(token); err != nil {
		apperrors.BadRequest(c, apperrors.AuthResetTokenInvalid, "Invalid or expired reset token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
	})
}

// ResetPassword completes the password reset flow
// POST /api/v1/auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid reset request")
		return
	}

	if err := util.ValidatePasswordStrength(req.NewPassword); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationWeakPassword,
			"Password must be at least 8 characters and contain a lowercase letter, an uppercase letter and a digit")
		return
	}

	if err := ctrl.passwordResetService.ResetPassword(req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken),
			errors.Is(err, service.ErrResetTokenExpired),
			errors.Is(err, service.ErrResetTokenUsed):
			log.Warn("Password reset rejected", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.AuthResetTokenInvalid, "Invalid or expired reset token")
			return
		}
		log.Error("Password reset failed", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset successfully",
	})
}

// Me returns the authenticated user's profile
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
	})
}
