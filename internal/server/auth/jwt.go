// Package auth issues and verifies the signed tokens and password hashes used
// to authenticate candidates and employers.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access tokens and refresh tokens apart so one can never be
// presented in place of the other.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims is the token payload: the standard registered claims (exp, iat,
// jti, sub) plus the user id, role, token type and the login session id
// shared by every token issued from one login.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64       `json:"user_id"`
	Role      models.Role `json:"role"`
	Type      TokenType   `json:"type"`
	SessionID string      `json:"sid,omitempty"`
}

// NewSessionID returns a fresh id for a login session.
func NewSessionID() string {
	return uuid.NewString()
}

// GenerateToken signs a new HS256 token of the given type for the user
// outside of any session. Every token gets a fresh random jti.
func GenerateToken(userID int64, role models.Role, typ TokenType, secretKey []byte, validityDuration time.Duration) (string, error) {
	return GenerateSessionToken(userID, role, typ, "", secretKey, validityDuration)
}

// GenerateSessionToken is GenerateToken with the sid claim set to sessionID.
func GenerateSessionToken(userID int64, role models.Role, typ TokenType, sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:    userID,
		Role:      role,
		Type:      typ,
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies signature and expiry and returns the claims.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// verification wraps common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ParseTokenOfType is ParseToken plus a check of the token type claim.
func ParseTokenOfType(tokenString string, secretKey []byte, typ TokenType) (*Claims, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token, got %q", common.ErrInvalidToken, typ, claims.Type)
	}
	return claims, nil
}
