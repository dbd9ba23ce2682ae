package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	// TokenTypeAccess marks short-lived tokens accepted by the auth middleware
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks long-lived tokens accepted only by the refresh endpoint
	TokenTypeRefresh = "refresh"
)

// Claims carried by both access and refresh tokens
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is the credential set returned on login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// ExpiredTokenError reports the expiry instant of a token that failed
// validation. It unwraps to ErrExpiredToken so callers can match with
// errors.Is while still reading the timestamp for diagnostics.
type ExpiredTokenError struct {
	ExpiredAt time.Time
}

func (e *ExpiredTokenError) Error() string {
	return fmt.Sprintf("token has expired at %s", e.ExpiredAt.UTC().Format(time.RFC3339))
}

func (e *ExpiredTokenError) Unwrap() error {
	return ErrExpiredToken
}

// GenerateTokenPair issues an access and a refresh token for the user.
// Both are signed with HS256; the refresh token carries a type discriminator
// so it cannot be presented as an access token.
func GenerateTokenPair(userID uint, email, secret string, accessExpiry, refreshExpiry time.Duration) (*TokenPair, error) {
	accessToken, err := generateToken(userID, email, TokenTypeAccess, secret, accessExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateToken(userID, email, TokenTypeRefresh, secret, refreshExpiry)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func generateToken(userID uint, email, tokenType, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies the signature and expiry of a token and returns its
// claims. Only HS256 is accepted; tokens signed with any other algorithm are
// rejected as invalid. An expired token with a valid signature yields an
// *ExpiredTokenError carrying the expiry instant.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && claims.ExpiresAt != nil {
			return nil, &ExpiredTokenError{ExpiredAt: claims.ExpiresAt.Time}
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// StripBearerPrefix removes at most one leading case-insensitive "Bearer "
// prefix from a token. Clients occasionally embed the scheme a second time
// inside the Authorization credentials; a single strip keeps a doubled
// header decodable without opening the door to unbounded stripping.
func StripBearerPrefix(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
