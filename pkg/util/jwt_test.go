package util

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateTokenPair(t *testing.T) {
	tokens, err := GenerateTokenPair(1, "test@example.com", testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, tokens)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
	assert.Equal(t, "bearer", tokens.TokenType)
}

func TestGenerateTokenPair_TokenTypes(t *testing.T) {
	tokens, err := GenerateTokenPair(42, "test@example.com", testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	access, err := ValidateToken(tokens.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "test@example.com", access.Email)
	assert.Equal(t, "42", access.Subject)

	refresh, err := ValidateToken(tokens.RefreshToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.Equal(t, uint(42), refresh.UserID)
}

func TestGenerateTokenPair_ExpirySpansConfiguredWindow(t *testing.T) {
	accessExpiry := 30 * time.Minute
	refreshExpiry := 48 * time.Hour

	before := time.Now()
	tokens, err := GenerateTokenPair(1, "test@example.com", testSecret, accessExpiry, refreshExpiry)
	require.NoError(t, err)
	after := time.Now()

	access, err := ValidateToken(tokens.AccessToken, testSecret)
	require.NoError(t, err)
	assert.True(t, !access.ExpiresAt.Time.Before(before.Add(accessExpiry)))
	assert.True(t, !access.ExpiresAt.Time.After(after.Add(accessExpiry)))

	refresh, err := ValidateToken(tokens.RefreshToken, testSecret)
	require.NoError(t, err)
	assert.True(t, !refresh.ExpiresAt.Time.Before(before.Add(refreshExpiry)))
	assert.True(t, !refresh.ExpiresAt.Time.After(after.Add(refreshExpiry)))
}

func TestValidateToken(t *testing.T) {
	userID := uint(123)
	email := "test@example.com"

	tokens, err := GenerateTokenPair(userID, email, testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{
			name:    "Valid access token",
			token:   tokens.AccessToken,
			secret:  testSecret,
			wantErr: nil,
		},
		{
			name:    "Valid refresh token",
			token:   tokens.RefreshToken,
			secret:  testSecret,
			wantErr: nil,
		},
		{
			name:    "Invalid secret",
			token:   tokens.AccessToken,
			secret:  "wrong-secret",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Invalid token format",
			token:   "invalid.token.format",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Empty token",
			token:   "",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Tampered payload",
			token:   tamper(tokens.AccessToken),
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				require.NotNil(t, claims)
				assert.Equal(t, userID, claims.UserID)
				assert.Equal(t, email, claims.Email)
			}
		})
	}
}

// tamper flips a character in the payload segment
func tamper(token string) string {
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}

func TestValidateToken_Expired(t *testing.T) {
	tokens, err := GenerateTokenPair(1, "test@example.com", testSecret, -time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(tokens.AccessToken, testSecret)
	assert.Nil(t, claims)
	require.Error(t, err)

	// Expiry is reported through a dedicated type carrying the instant
	var expiredErr *ExpiredTokenError
	require.ErrorAs(t, err, &expiredErr)
	assert.WithinDuration(t, time.Now().Add(-time.Minute), expiredErr.ExpiredAt, time.Minute)

	// It also matches the sentinel for callers that only branch
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsUnexpectedAlgorithms(t *testing.T) {
	// A token signed with "none" must not pass however well-formed it is
	claims := &Claims{
		UserID:    1,
		Email:     "test@example.com",
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	noneToken := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := noneToken.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parsed, err := ValidateToken(signed, testSecret)
	assert.Nil(t, parsed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStripBearerPrefix(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "No prefix",
			input: "abc.def.ghi",
			want:  "abc.def.ghi",
		},
		{
			name:  "Single prefix",
			input: "Bearer abc.def.ghi",
			want:  "abc.def.ghi",
		},
		{
			name:  "Lowercase prefix",
			input: "bearer abc.def.ghi",
			want:  "abc.def.ghi",
		},
		{
			name:  "Mixed case prefix",
			input: "BeArEr abc.def.ghi",
			want:  "abc.def.ghi",
		},
		{
			name:  "Only one prefix is stripped",
			input: "Bearer Bearer abc.def.ghi",
			want:  "Bearer abc.def.ghi",
		},
		{
			name:  "Prefix without space survives",
			input: "Bearerabc.def.ghi",
			want:  "Bearerabc.def.ghi",
		},
		{
			name:  "Empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripBearerPrefix(tt.input))
		})
	}
}

func TestExpiredTokenError_Unwrap(t *testing.T) {
	err := &ExpiredTokenError{ExpiredAt: time.Now()}
	assert.True(t, errors.Is(err, ErrExpiredToken))
}
