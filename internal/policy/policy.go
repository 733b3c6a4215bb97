// Package policy is the authorization decision table. It is a pure
// function over (caller, action, resource) so the rule set can be
// tested in isolation from transport and persistence.
package policy

import "github.com/taskcourse/apiserver/types"

// Action identifies an operation a caller wants to perform.
type Action string

const (
	ActionTaskCreate Action = "task:create"
	ActionTaskList   Action = "task:list"
	ActionTaskRead   Action = "task:read"
	ActionTaskUpdate Action = "task:update"
	ActionTaskDelete Action = "task:delete"

	ActionCourseCreate   Action = "course:create"
	ActionCourseList     Action = "course:list"
	ActionCourseRead     Action = "course:read"
	ActionCourseUpdate   Action = "course:update"
	ActionCourseDelete   Action = "course:delete"
	ActionCourseRegister Action = "course:register"
	ActionCourseStudent  Action = "course:student-courses"

	ActionUserCreate Action = "user:create"
	ActionUserList   Action = "user:list"
	ActionUserRead   Action = "user:read"
	ActionUserUpdate Action = "user:update"
	ActionUserDelete Action = "user:delete"
)

// ResourceKind identifies the resource type an action targets.
type ResourceKind string

const (
	KindUser   ResourceKind = "user"
	KindTask   ResourceKind = "task"
	KindCourse ResourceKind = "course"
)

// Caller is the authenticated identity asking for access. A zero
// Caller represents an unauthenticated request.
type Caller struct {
	ID   int
	Role string
}

// Resource describes the target of an action. OwnerID is zero when
// the resource has no owner (for example, a course record).
type Resource struct {
	Kind    ResourceKind
	OwnerID int
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Decide evaluates the access rules in order; the first match wins.
//
//  1. Admins may perform every action on user and course resources.
//  2. Owners may act on their own tasks, their own course
//     registrations, and their own registration listings.
//  3. Course reads are public.
//  4. Everything else is denied.
//
// Admins get no special access to other users' tasks: task access is
// strictly ownership based.
func Decide(caller Caller, action Action, resource Resource) Decision {
	if caller.Role == types.RoleAdmin && (resource.Kind == KindUser || resource.Kind == KindCourse) {
		return allow
	}

	if ownershipEligible(action) && resource.OwnerID != 0 && resource.OwnerID == caller.ID {
		return allow
	}

	if action == ActionCourseList || action == ActionCourseRead {
		return allow
	}

	return deny(reasonFor(action))
}

// ownershipEligible reports whether an action may be granted on the
// basis of resource ownership. Arbitrary-user administration is
// deliberately excluded: those operations are admin only.
func ownershipEligible(action Action) bool {
	switch action {
	case ActionTaskCreate, ActionTaskList, ActionTaskRead, ActionTaskUpdate, ActionTaskDelete,
		ActionCourseRegister, ActionCourseStudent:
		return true
	}
	return false
}

func reasonFor(action Action) string {
	switch action {
	case ActionTaskRead, ActionTaskUpdate, ActionTaskDelete:
		return "You don't have permission to access this task"
	case ActionUserCreate, ActionUserList, ActionUserRead, ActionUserUpdate, ActionUserDelete:
		return "You do not have permission to access or modify this user"
	case ActionCourseStudent:
		return "You do not have permission to view this student's courses"
	default:
		return "You do not have permission to perform this action"
	}
}
