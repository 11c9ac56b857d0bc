package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token subject kinds embedded in issued JWTs.
const (
	subjectAdmin = "admin"
	subjectUser  = "user"
)

// ErrInvalidToken indicates a token that failed validation.
var ErrInvalidToken = errors.New("security: invalid token")

// Claims are the JWT claims issued for both admins and users.
type Claims struct {
	AccountID uint64 `json:"account_id"` // Admin or user primary key.
	Kind      string `json:"kind"`       // "admin" or "user".
	jwt.RegisteredClaims
}

// CreateAdminToken issues a signed JWT for an admin account.
func CreateAdminToken(secret string, expiry time.Duration, adminID uint64) (string, error) {
	return createToken(secret, expiry, adminID, subjectAdmin)
}

// CreateUserToken issues a signed JWT for a user account.
func CreateUserToken(secret string, expiry time.Duration, userID uint64) (string, error) {
	return createToken(secret, expiry, userID, subjectUser)
}

// createToken signs claims for the given account and kind.
func createToken(secret string, expiry time.Duration, accountID uint64, kind string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("security: missing jwt secret")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	now := time.Now().UTC()
	claims := Claims{
		AccountID: accountID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign token: %w", errSign)
	}
	return signed, nil
}

// ParseAdminToken validates an admin JWT and returns its claims.
func ParseAdminToken(secret, raw string) (*Claims, error) {
	return parseToken(secret, raw, subjectAdmin)
}

// ParseUserToken validates a user JWT and returns its claims.
func ParseUserToken(secret, raw string) (*Claims, error) {
	return parseToken(secret, raw, subjectUser)
}

// parseToken validates a JWT of the expected kind.
func parseToken(secret, raw, kind string) (*Claims, error) {
	claims := &Claims{}
	token, errParse := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind || claims.AccountID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
