package services

import (
	"context"
	"errors"
	"strings"

	"github.com/taskcourse/apiserver/internal/apperr"
	"github.com/taskcourse/apiserver/internal/auth"
	"github.com/taskcourse/apiserver/internal/policy"
	"github.com/taskcourse/apiserver/internal/store"
	"github.com/taskcourse/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// UserService encapsulates administration of user accounts. Every
// operation except Lookup is gated by the policy engine; the strict
// variant applies, so arbitrary-user operations require the ADMIN role.
type UserService struct {
	repo  UserRepository
	creds *auth.Credentials
}

func NewUserService(repo UserRepository, creds *auth.Credentials) *UserService {
	return &UserService{repo: repo, creds: creds}
}

// UpdateUserInput carries the mutable user fields. Nil fields are left
// unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// Lookup fetches a user by id without a policy check. It exists for
// infrastructure callers (auth middleware, seeding), not request
// handlers.
func (s *UserService) Lookup(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.Newf(apperr.NotFound, "User #%d not found", id)
		}
		return types.User{}, err
	}
	return user, nil
}

// LookupByEmail fetches a user by email without a policy check.
func (s *UserService) LookupByEmail(ctx context.Context, email string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.New(apperr.NotFound, "User not found")
		}
		return types.User{}, err
	}
	return user, nil
}

// Create adds a user account on behalf of an administrator. It shares
// registration's validation and duplicate handling but issues no token.
func (s *UserService) Create(ctx context.Context, caller policy.Caller, in RegisterInput) (types.User, error) {
	if decision := policy.Decide(caller, policy.ActionUserCreate, policy.Resource{Kind: policy.KindUser}); !decision.Allowed {
		return types.User{}, apperr.New(apperr.Forbidden, decision.Reason)
	}
	return createUser(ctx, s.repo, s.creds, in)
}

func (s *UserService) List(ctx context.Context, caller policy.Caller) ([]types.User, error) {
	if decision := policy.Decide(caller, policy.ActionUserList, policy.Resource{Kind: policy.KindUser}); !decision.Allowed {
		return nil, apperr.New(apperr.Forbidden, decision.Reason)
	}
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, caller policy.Caller, id int) (types.User, error) {
	if decision := policy.Decide(caller, policy.ActionUserRead, policy.Resource{Kind: policy.KindUser, OwnerID: id}); !decision.Allowed {
		return types.User{}, apperr.New(apperr.Forbidden, decision.Reason)
	}
	return s.Lookup(ctx, id)
}

func (s *UserService) Update(ctx context.Context, caller policy.Caller, id int, in UpdateUserInput) (types.User, error) {
	if decision := policy.Decide(caller, policy.ActionUserUpdate, policy.Resource{Kind: policy.KindUser, OwnerID: id}); !decision.Allowed {
		return types.User{}, apperr.New(apperr.Forbidden, decision.Reason)
	}

	user, err := s.Lookup(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return types.User{}, apperr.New(apperr.BadRequest, "Name must not be empty")
		}
		user.Name = name
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if !validEmail(email) {
			return types.User{}, apperr.New(apperr.BadRequest, "Invalid email address")
		}
		if email != user.Email {
			if _, err := s.repo.GetByEmail(ctx, email); err == nil {
				return types.User{}, apperr.New(apperr.Conflict, "User with this email already exists")
			} else if !errors.Is(err, store.ErrNotFound) {
				return types.User{}, err
			}
			user.Email = email
		}
	}

	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return types.User{}, err
		}
		hashed, err := s.creds.HashPassword(*in.Password)
		if err != nil {
			return types.User{}, apperr.Wrap(apperr.Internal, "Failed to update user", err)
		}
		user.PasswordHash = hashed
	}

	if in.Role != nil {
		if !types.ValidRole(*in.Role) {
			return types.User{}, apperr.New(apperr.BadRequest, "Invalid role")
		}
		user.Role = *in.Role
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return types.User{}, apperr.Newf(apperr.NotFound, "User #%d not found", id)
		case errors.Is(err, store.ErrConflict):
			return types.User{}, apperr.New(apperr.Conflict, "User with this email already exists")
		}
		return types.User{}, apperr.Wrap(apperr.Internal, "Failed to update user", err)
	}
	return updated, nil
}

// Delete removes a user and returns the deleted record.
func (s *UserService) Delete(ctx context.Context, caller policy.Caller, id int) (types.User, error) {
	if decision := policy.Decide(caller, policy.ActionUserDelete, policy.Resource{Kind: policy.KindUser, OwnerID: id}); !decision.Allowed {
		return types.User{}, apperr.New(apperr.Forbidden, decision.Reason)
	}

	user, err := s.Lookup(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.Newf(apperr.NotFound, "User #%d not found", id)
		}
		return types.User{}, apperr.Wrap(apperr.Internal, "Failed to delete user", err)
	}
	return user, nil
}

// createUser validates, hashes, and persists a new account. Shared by
// registration and the admin create operation.
func createUser(ctx context.Context, repo UserRepository, creds *auth.Credentials, in RegisterInput) (types.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return types.User{}, apperr.New(apperr.BadRequest, "Name must not be empty")
	}

	email := normalizeEmail(in.Email)
	if !validEmail(email) {
		return types.User{}, apperr.New(apperr.BadRequest, "Invalid email address")
	}

	if err := validatePassword(in.Password); err != nil {
		return types.User{}, err
	}

	role := in.Role
	if role == "" {
		role = types.RoleStudent
	}
	if !types.ValidRole(role) {
		return types.User{}, apperr.New(apperr.BadRequest, "Invalid role")
	}

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, apperr.New(apperr.Conflict, "User with this email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, apperr.Wrap(apperr.Internal, "Failed to create user", err)
	}

	hashed, err := creds.HashPassword(in.Password)
	if err != nil {
		return types.User{}, apperr.Wrap(apperr.Internal, "Failed to create user", err)
	}

	user, err := repo.Create(ctx, types.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, apperr.New(apperr.Conflict, "User with this email already exists")
		}
		return types.User{}, apperr.Wrap(apperr.Internal, "Failed to create user", err)
	}
	return user, nil
}
