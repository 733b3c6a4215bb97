package types

import "time"

// Roles assignable to a user account.
const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent
}

// User represents an account in the system.
// It contains identity, role, course registrations, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address. It is stored trimmed and
	// lowercased and is unique across all users.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level within the
	// system ("ADMIN" or "STUDENT").
	Role string `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// RegisteredCourseIDs holds the ids of the courses the user has
	// registered for. Order carries no meaning.
	RegisteredCourseIDs []int `json:"registered_course_ids" db:"registered_course_ids"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RegisteredFor reports whether the user is registered for the given course.
func (u User) RegisteredFor(courseID int) bool {
	for _, id := range u.RegisteredCourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}
