// Package auth owns password hashing and token issuance/verification.
// Orchestrators call it explicitly; hashing never happens as a side
// effect of persistence.
package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskcourse/apiserver/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

// Claims carries the identity embedded in an access token.
type Claims struct {
	UserID int
	Email  string
	Role   string
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Credentials issues and verifies tokens and hashes passwords.
type Credentials struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewCredentials constructs a Credentials service with an HS256 secret
// and token lifetime.
func NewCredentials(secret string, tokenTTL time.Duration) *Credentials {
	return &Credentials{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func (c *Credentials) HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
func (c *Credentials) VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IssueToken signs a JWT for the given claims.
func (c *Credentials) IssueToken(claims Claims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: claims.Email,
		Role:  claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(claims.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.tokenTTL)),
		},
	})
	return token.SignedString(c.secret)
}

// VerifyToken parses and validates a token string. Every parse or
// validation failure surfaces as an Unauthorized error.
func (c *Credentials) VerifyToken(tokenString string) (Claims, error) {
	parsed := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, apperr.Wrap(apperr.Unauthorized, "Invalid token", err)
	}

	userID, err := strconv.Atoi(strings.TrimSpace(parsed.Subject))
	if err != nil || userID < 1 {
		return Claims{}, apperr.New(apperr.Unauthorized, "Invalid token")
	}

	return Claims{
		UserID: userID,
		Email:  parsed.Email,
		Role:   parsed.Role,
	}, nil
}
