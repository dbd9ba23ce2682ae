package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/internal/db"
	"github.com/jmoreau/taskhive-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret"

func setupAuthMiddlewareTest(t *testing.T) (*gin.Engine, *gorm.DB, *model.User) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, testDB.Create(user).Error)

	authMW := NewAuthMiddleware(testSecret, repository.NewUserRepository(testDB))

	router := gin.New()
	router.GET("/protected", authMW.Authenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return router, testDB, user
}

func accessTokenFor(t *testing.T, user *model.User, expiry time.Duration) string {
	tokens, err := util.GenerateTokenPair(user.ID, user.Email, testSecret, expiry, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, testDB, user := setupAuthMiddlewareTest(t)
	defer db.CleanupTestDB(testDB)

	token := accessTokenFor(t, user, 15*time.Minute)
	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(user.ID), body["user_id"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router, testDB, _ := setupAuthMiddlewareTest(t)
	defer db.CleanupTestDB(testDB)

	w := doRequest(router, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "AUTH_UNAUTHORIZED", body["error"])
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	router, testDB, user := setupAuthMiddlewareTest(t)
	defer db.CleanupTestDB(testDB)

	token := accessTokenFor(t, user, -time.Minute)
	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "AUTH_TOKEN_EXPIRED", body["error"])

	// Expiry responses carry both instants so clients can see the skew
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "expired_at")
	assert.Contains(t, details, "current_time")
}

func TestAuthMiddleware_InvalidTokens(t *testing.T) {
	router, testDB, user := setupAuthMiddlewareTest(t)
	defer db.CleanupTestDB(testDB)

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	foreign, err := util.GenerateTokenPair(user.ID, user.Email, "other-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"Garbage token", "Bearer not.a.token"},
		{"Wrong signature", "Bearer " + foreign.AccessToken},
		{"Refresh token on access route", "Bearer " + tokens.RefreshToken},
		{"Missing scheme", tokens.AccessToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, "AUTH_TOKEN_INVALID", body["error"])
			// Nothing beyond the generic message leaks
			assert.NotContains(t, body, "details")
		})
	}
}

func TestAuthMiddleware_DoubledBearerPrefix(t *testing.T) {
	router, testDB, user := setupAuthMiddlewareTest(t)
	defer db.CleanupTestDB(testDB)

	token := accessTokenFor(t, user, 15*time.Minute)

	t.Run("One extra prefix is tolerated", func(t *testing.T) {
		w := doRequest(router, "Bearer Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Case-insensitive scheme", func(t *testing.T) {
		w := doRequest(router, "bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Two extra prefixes are rejected", func(t *testing.T) {
		w := doRequest(router, "Bearer Bearer Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "AUTH_TOKEN_INVALID", body["error"])
	})
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	router, testDB, user := setupAuthMiddlewareTest(t)
	defer db.CleanupTestDB(testDB)

	token := accessTokenFor(t, user, 15*time.Minute)
	require.NoError(t, testDB.Delete(&model.User{}, user.ID).Error)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "AUTH_TOKEN_INVALID", body["error"])
}
