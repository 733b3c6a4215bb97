package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskcourse/apiserver/internal/apperr"
	"github.com/taskcourse/apiserver/internal/auth"
	"github.com/taskcourse/apiserver/internal/policy"
	"github.com/taskcourse/apiserver/internal/ratelimit"
	"github.com/taskcourse/apiserver/internal/services"
	"github.com/taskcourse/apiserver/types"
)

// AuthHandler provides registration and login endpoints.
type AuthHandler struct {
	authService  *services.AuthService
	loginLimiter *ratelimit.FixedWindow
	limitWindow  int
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, loginLimiter *ratelimit.FixedWindow, limitWindowMinutes int) *AuthHandler {
	if limitWindowMinutes < 1 {
		limitWindowMinutes = 1
	}
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		limitWindow:  limitWindowMinutes,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService, loginLimiter *ratelimit.FixedWindow, limitWindowMinutes int) {
	handler := NewAuthHandler(authService, loginLimiter, limitWindowMinutes)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
}

// RequireAuth verifies the bearer token, confirms the account still
// exists, and injects the caller identity into the request context.
func RequireAuth(creds *auth.Credentials, userService *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := creds.VerifyToken(tokenString)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}

			// Token subjects are re-resolved against the store so a
			// deleted account or stale role claim cannot get through.
			user, err := userService.Lookup(r.Context(), claims.UserID)
			if err != nil {
				if apperr.KindOf(err) == apperr.NotFound {
					writeError(w, r, http.StatusUnauthorized, "Invalid token")
					return
				}
				writeAppError(w, r, err)
				return
			}

			caller := policy.Caller{ID: user.ID, Role: user.Role}
			ctx := context.WithValue(r.Context(), contextCallerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserPayload struct {
	User types.User `json:"user"`
}

type LoginPayload struct {
	User        types.User `json:"user"`
	AccessToken string     `json:"access_token"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User successfully registered", UserPayload{User: user})
}

// Login verifies credentials and returns an access token. Attempts are
// rate limited per client address before credentials are even looked
// at.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimiter.Allow(clientIP(r)) {
		message := fmt.Sprintf("Too many login attempts. Please try again after %d minute(s).", h.limitWindow)
		writeError(w, r, http.StatusTooManyRequests, message)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User successfully logged in", LoginPayload{
		User:        user,
		AccessToken: token,
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
