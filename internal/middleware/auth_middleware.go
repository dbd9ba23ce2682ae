package middleware

import (
	goerrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/internal/errors"
	"github.com/jmoreau/taskhive-backend/pkg/util"
	"gorm.io/gorm"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserKey      = "current_user"
)

type AuthMiddleware struct {
	jwtSecret string
	userRepo  repository.UserRepository
}

func NewAuthMiddleware(jwtSecret string, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		userRepo:  userRepo,
	}
}

// Authenticate validates the access token and loads the account behind it.
// Expired tokens get their own error code so clients know to refresh; every
// other failure collapses into a single generic rejection.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		token := strings.TrimSpace(authHeader)
		if len(token) < 7 || !strings.EqualFold(token[:7], "bearer ") {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Authorization header must use the Bearer scheme")
			c.Abort()
			return
		}
		// Some clients send the stored "Bearer x" value with another Bearer
		// prefix on top. One doubled prefix is tolerated.
		token = util.StripBearerPrefix(strings.TrimSpace(token[7:]))

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			var expiredErr *util.ExpiredTokenError
			if goerrors.As(err, &expiredErr) {
				errors.RespondWithErrorDetails(c, http.StatusUnauthorized, errors.AuthTokenExpired,
					"Access token has expired", map[string]interface{}{
						"expired_at":   expiredErr.ExpiredAt.UTC().Format(time.RFC3339),
						"current_time": time.Now().UTC().Format(time.RFC3339),
					})
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			}
			c.Abort()
			return
		}

		if claims.TokenType != util.TokenTypeAccess {
			log.Warn("Wrong token type for authentication", map[string]interface{}{
				"path":       c.Request.URL.Path,
				"token_type": claims.TokenType,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			c.Abort()
			return
		}

		if claims.UserID == 0 {
			log.Warn("Token carries a malformed subject", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			c.Abort()
			return
		}

		// A token outliving its account must not authenticate
		user, err := m.userRepo.FindByID(claims.UserID)
		if err != nil {
			if goerrors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("Token references a deleted user", map[string]interface{}{
					"user_id": claims.UserID,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			} else {
				log.Error("Failed to load user for authentication", err, map[string]interface{}{
					"user_id": claims.UserID,
				})
				errors.InternalError(c, "An internal error occurred")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserEmailKey, user.Email)
		c.Set(UserKey, user)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
		})

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetCurrentUser extracts the authenticated user from context
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	return user.(*model.User), true
}
