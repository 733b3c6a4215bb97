package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/taskcourse/apiserver/internal/apperr"
	"github.com/taskcourse/apiserver/internal/auth"
	"github.com/taskcourse/apiserver/internal/events"
	"github.com/taskcourse/apiserver/internal/store"
	"github.com/taskcourse/apiserver/types"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AuthService handles registration and login.
type AuthService struct {
	users     UserRepository
	creds     *auth.Credentials
	publisher *events.Publisher
}

func NewAuthService(users UserRepository, creds *auth.Credentials, publisher *events.Publisher) *AuthService {
	return &AuthService{
		users:     users,
		creds:     creds,
		publisher: publisher,
	}
}

// RegisterInput carries the fields of a registration request. Role is
// optional and defaults to STUDENT.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register validates the input, rejects duplicate emails, and persists
// a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	user, err := createUser(ctx, s.users, s.creds, in)
	if err != nil {
		return types.User{}, err
	}

	s.publisher.UserRegistered(ctx, user)
	return user, nil
}

// Login verifies credentials and issues an access token. Both an
// unknown email and a wrong password produce the same generic failure
// so callers cannot probe which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, "", apperr.New(apperr.Unauthorized, "Invalid credentials")
		}
		return types.User{}, "", apperr.Wrap(apperr.Internal, "Failed to authenticate", err)
	}

	if !s.creds.VerifyPassword(password, user.PasswordHash) {
		return types.User{}, "", apperr.New(apperr.Unauthorized, "Invalid credentials")
	}

	token, err := s.creds.IssueToken(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return types.User{}, "", apperr.Wrap(apperr.Internal, "Failed to create token", err)
	}

	return user, token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validatePassword enforces the password policy: minimum length, at
// least one uppercase letter, one lowercase letter, and one digit or
// symbol.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Newf(apperr.BadRequest, "Password must be at least %d characters long", minPasswordLength)
	}

	var hasUpper, hasLower, hasDigitOrSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasDigitOrSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasDigitOrSymbol {
		return apperr.New(apperr.BadRequest, "Password is too weak")
	}
	return nil
}
