package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pairchat/errors"
)

// TokenKind separates the short-lived access token from the long-lived
// refresh token. Each kind is signed with its own secret so one can never
// stand in for the other.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims is the payload stored inside both token kinds.
type Claims struct {
	UserID string    `json:"user_id"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the two token kinds bound to a user id.
// Verification is stateless; refresh-token statefulness (the stored value
// on the user record) is the service layer's concern.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair generates a fresh access/refresh token pair for a user.
func (t *TokenIssuer) IssuePair(userID string) (access string, refresh string, err error) {
	access, err = t.issue(userID, TokenAccess, t.accessSecret, t.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = t.issue(userID, TokenRefresh, t.refreshSecret, t.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (t *TokenIssuer) issue(userID string, kind TokenKind, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "pairchat",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access token and returns its user id.
func (t *TokenIssuer) VerifyAccess(tokenString string) (string, error) {
	return t.verify(tokenString, TokenAccess, t.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its user id.
func (t *TokenIssuer) VerifyRefresh(tokenString string) (string, error) {
	return t.verify(tokenString, TokenRefresh, t.refreshSecret)
}

func (t *TokenIssuer) verify(tokenString string, kind TokenKind, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Unauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind {
		return "", errors.Unauthorized("invalid or expired token")
	}
	return claims.UserID, nil
}
