package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskcourse/apiserver/internal/services"
	"github.com/taskcourse/apiserver/types"
)

// UserHandler provides HTTP handlers for user administration.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user administration routes on the given router.
// Every route requires an authenticated caller; the service layer
// restricts the operations themselves to administrators.
func UserRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateUser)
	r.Get("/", handler.ListUsers)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Patch("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type UserListPayload struct {
	Users []types.User `json:"users"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), caller, services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User successfully created", UserPayload{User: user})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	users, err := h.userService.List(r.Context(), caller)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Users retrieved successfully", UserListPayload{Users: users})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "userID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	user, err := h.userService.Get(r.Context(), caller, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User retrieved successfully", UserPayload{User: user})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "userID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), caller, id, services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User updated successfully", UserPayload{User: user})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "userID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	user, err := h.userService.Delete(r.Context(), caller, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User deleted successfully", UserPayload{User: user})
}
