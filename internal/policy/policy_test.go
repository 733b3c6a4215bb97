package policy

import (
	"testing"

	"github.com/taskcourse/apiserver/types"
)

func TestDecide(t *testing.T) {
	admin := Caller{ID: 1, Role: types.RoleAdmin}
	alice := Caller{ID: 2, Role: types.RoleStudent}
	bob := Caller{ID: 3, Role: types.RoleStudent}
	anonymous := Caller{}

	tests := []struct {
		name     string
		caller   Caller
		action   Action
		resource Resource
		allowed  bool
	}{
		{"admin creates course", admin, ActionCourseCreate, Resource{Kind: KindCourse}, true},
		{"admin updates course", admin, ActionCourseUpdate, Resource{Kind: KindCourse}, true},
		{"admin deletes course", admin, ActionCourseDelete, Resource{Kind: KindCourse}, true},
		{"admin lists users", admin, ActionUserList, Resource{Kind: KindUser}, true},
		{"admin reads any user", admin, ActionUserRead, Resource{Kind: KindUser, OwnerID: alice.ID}, true},
		{"admin deletes any user", admin, ActionUserDelete, Resource{Kind: KindUser, OwnerID: alice.ID}, true},
		{"admin registers any student", admin, ActionCourseRegister, Resource{Kind: KindCourse, OwnerID: alice.ID}, true},
		{"admin views any student's courses", admin, ActionCourseStudent, Resource{Kind: KindCourse, OwnerID: alice.ID}, true},

		// Task access is strictly ownership based; the admin role grants
		// nothing extra.
		{"admin reads own task", admin, ActionTaskRead, Resource{Kind: KindTask, OwnerID: admin.ID}, true},
		{"admin reads another's task", admin, ActionTaskRead, Resource{Kind: KindTask, OwnerID: alice.ID}, false},
		{"admin deletes another's task", admin, ActionTaskDelete, Resource{Kind: KindTask, OwnerID: alice.ID}, false},

		{"owner creates task", alice, ActionTaskCreate, Resource{Kind: KindTask, OwnerID: alice.ID}, true},
		{"owner lists tasks", alice, ActionTaskList, Resource{Kind: KindTask, OwnerID: alice.ID}, true},
		{"owner reads task", alice, ActionTaskRead, Resource{Kind: KindTask, OwnerID: alice.ID}, true},
		{"owner updates task", alice, ActionTaskUpdate, Resource{Kind: KindTask, OwnerID: alice.ID}, true},
		{"owner deletes task", alice, ActionTaskDelete, Resource{Kind: KindTask, OwnerID: alice.ID}, true},
		{"student reads another's task", bob, ActionTaskRead, Resource{Kind: KindTask, OwnerID: alice.ID}, false},
		{"student updates another's task", bob, ActionTaskUpdate, Resource{Kind: KindTask, OwnerID: alice.ID}, false},

		{"student registers self", alice, ActionCourseRegister, Resource{Kind: KindCourse, OwnerID: alice.ID}, true},
		{"student registers another", bob, ActionCourseRegister, Resource{Kind: KindCourse, OwnerID: alice.ID}, false},
		{"student views own courses", alice, ActionCourseStudent, Resource{Kind: KindCourse, OwnerID: alice.ID}, true},
		{"student views another's courses", bob, ActionCourseStudent, Resource{Kind: KindCourse, OwnerID: alice.ID}, false},

		{"student creates course", alice, ActionCourseCreate, Resource{Kind: KindCourse}, false},
		{"student updates course", alice, ActionCourseUpdate, Resource{Kind: KindCourse}, false},
		{"student deletes course", alice, ActionCourseDelete, Resource{Kind: KindCourse}, false},

		{"anonymous lists courses", anonymous, ActionCourseList, Resource{Kind: KindCourse}, true},
		{"anonymous reads course", anonymous, ActionCourseRead, Resource{Kind: KindCourse}, true},
		{"student lists courses", alice, ActionCourseList, Resource{Kind: KindCourse}, true},

		// Arbitrary-user administration is not ownership eligible, so a
		// student cannot even touch their own record through these ops.
		{"student reads own user record", alice, ActionUserRead, Resource{Kind: KindUser, OwnerID: alice.ID}, false},
		{"student updates own user record", alice, ActionUserUpdate, Resource{Kind: KindUser, OwnerID: alice.ID}, false},
		{"student lists users", alice, ActionUserList, Resource{Kind: KindUser}, false},
		{"student creates user", alice, ActionUserCreate, Resource{Kind: KindUser}, false},

		// A zero owner never matches a zero caller.
		{"anonymous creates task", anonymous, ActionTaskCreate, Resource{Kind: KindTask}, false},
		{"anonymous registers", anonymous, ActionCourseRegister, Resource{Kind: KindCourse}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.caller, tt.action, tt.resource)
			if decision.Allowed != tt.allowed {
				t.Fatalf("Decide(%+v, %s, %+v) allowed = %v, want %v",
					tt.caller, tt.action, tt.resource, decision.Allowed, tt.allowed)
			}
			if !decision.Allowed && decision.Reason == "" {
				t.Fatalf("denied decision has empty reason")
			}
			if decision.Allowed && decision.Reason != "" {
				t.Fatalf("allowed decision has reason %q", decision.Reason)
			}
		})
	}
}

func TestDenialReasons(t *testing.T) {
	bob := Caller{ID: 3, Role: types.RoleStudent}

	taskDenied := Decide(bob, ActionTaskRead, Resource{Kind: KindTask, OwnerID: 2})
	if taskDenied.Reason != "You don't have permission to access this task" {
		t.Fatalf("unexpected task denial reason: %q", taskDenied.Reason)
	}

	userDenied := Decide(bob, ActionUserDelete, Resource{Kind: KindUser, OwnerID: 2})
	if userDenied.Reason != "You do not have permission to access or modify this user" {
		t.Fatalf("unexpected user denial reason: %q", userDenied.Reason)
	}

	studentDenied := Decide(bob, ActionCourseStudent, Resource{Kind: KindCourse, OwnerID: 2})
	if studentDenied.Reason != "You do not have permission to view this student's courses" {
		t.Fatalf("unexpected student-courses denial reason: %q", studentDenied.Reason)
	}
}
