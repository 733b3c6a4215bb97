package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskcourse/apiserver/internal/apperr"
	"github.com/taskcourse/apiserver/internal/events"
	"github.com/taskcourse/apiserver/internal/policy"
	"github.com/taskcourse/apiserver/internal/store"
	"github.com/taskcourse/apiserver/types"
)

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	List(ctx context.Context) ([]types.Course, error)
	Get(ctx context.Context, id int) (types.Course, error)
	GetByTitle(ctx context.Context, title string) (types.Course, error)
	ListByIDs(ctx context.Context, ids []int) ([]types.Course, error)
	Create(ctx context.Context, course types.Course) (types.Course, error)
	Update(ctx context.Context, course types.Course) (types.Course, error)
	Delete(ctx context.Context, id int) error
}

// CourseService encapsulates course management and student
// registration. Reads are public; mutations are admin only; students
// register themselves.
type CourseService struct {
	repo      CourseRepository
	users     UserRepository
	publisher *events.Publisher
}

func NewCourseService(repo CourseRepository, users UserRepository, publisher *events.Publisher) *CourseService {
	return &CourseService{
		repo:      repo,
		users:     users,
		publisher: publisher,
	}
}

// CreateCourseInput carries the fields of a course creation request.
type CreateCourseInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// UpdateCourseInput carries the mutable course fields. Nil fields are
// left unchanged.
type UpdateCourseInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *CourseService) Create(ctx context.Context, caller policy.Caller, in CreateCourseInput) (types.Course, error) {
	if decision := policy.Decide(caller, policy.ActionCourseCreate, policy.Resource{Kind: policy.KindCourse}); !decision.Allowed {
		return types.Course{}, apperr.New(apperr.Forbidden, decision.Reason)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return types.Course{}, apperr.New(apperr.BadRequest, "Title must not be empty")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return types.Course{}, apperr.New(apperr.BadRequest, "Start date and end date are required")
	}

	if _, err := s.repo.GetByTitle(ctx, title); err == nil {
		return types.Course{}, apperr.Newf(apperr.Conflict, "Course with title %q already exists", title)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Course{}, apperr.Wrap(apperr.Internal, "Failed to create course", err)
	}

	course, err := s.repo.Create(ctx, types.Course{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Course{}, apperr.Newf(apperr.Conflict, "Course with title %q already exists", title)
		}
		return types.Course{}, apperr.Wrap(apperr.Internal, "Failed to create course", err)
	}
	return course, nil
}

// List returns all courses. Course listings are public.
func (s *CourseService) List(ctx context.Context) ([]types.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to list courses", err)
	}
	return courses, nil
}

// Get returns a single course. Course reads are public.
func (s *CourseService) Get(ctx context.Context, id int) (types.Course, error) {
	course, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Course{}, apperr.Newf(apperr.NotFound, "Course with ID %d not found", id)
		}
		return types.Course{}, apperr.Wrap(apperr.Internal, "Failed to fetch course", err)
	}
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, caller policy.Caller, id int, in UpdateCourseInput) (types.Course, error) {
	if decision := policy.Decide(caller, policy.ActionCourseUpdate, policy.Resource{Kind: policy.KindCourse}); !decision.Allowed {
		return types.Course{}, apperr.New(apperr.Forbidden, decision.Reason)
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return types.Course{}, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return types.Course{}, apperr.New(apperr.BadRequest, "Title must not be empty")
		}
		if title != course.Title {
			existing, err := s.repo.GetByTitle(ctx, title)
			if err == nil && existing.ID != id {
				return types.Course{}, apperr.Newf(apperr.Conflict, "Course with title %q already exists", title)
			}
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return types.Course{}, apperr.Wrap(apperr.Internal, "Failed to update course", err)
			}
			course.Title = title
		}
	}
	if in.Description != nil {
		course.Description = strings.TrimSpace(*in.Description)
	}
	if in.StartDate != nil {
		course.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		course.EndDate = *in.EndDate
	}

	updated, err := s.repo.Update(ctx, course)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return types.Course{}, apperr.Newf(apperr.NotFound, "Course with ID %d not found", id)
		case errors.Is(err, store.ErrConflict):
			return types.Course{}, apperr.Newf(apperr.Conflict, "Course with title %q already exists", course.Title)
		}
		return types.Course{}, apperr.Wrap(apperr.Internal, "Failed to update course", err)
	}
	return updated, nil
}

// Delete removes a course. Registration lists are not cleaned up;
// dangling ids are skipped when a student's courses are resolved.
func (s *CourseService) Delete(ctx context.Context, caller policy.Caller, id int) error {
	if decision := policy.Decide(caller, policy.ActionCourseDelete, policy.Resource{Kind: policy.KindCourse}); !decision.Allowed {
		return apperr.New(apperr.Forbidden, decision.Reason)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Newf(apperr.NotFound, "Course with ID %d not found", id)
		}
		return apperr.Wrap(apperr.Internal, "Failed to delete course", err)
	}
	return nil
}

// Register enrolls a student in a course. Students may only register
// themselves; admins may register any student. Registering twice for
// the same course is rejected.
func (s *CourseService) Register(ctx context.Context, caller policy.Caller, courseID, studentID int) (types.User, error) {
	if decision := policy.Decide(caller, policy.ActionCourseRegister, policy.Resource{Kind: policy.KindCourse, OwnerID: studentID}); !decision.Allowed {
		return types.User{}, apperr.New(apperr.Forbidden, decision.Reason)
	}

	if _, err := s.Get(ctx, courseID); err != nil {
		return types.User{}, err
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.Newf(apperr.NotFound, "Student with ID %d not found", studentID)
		}
		return types.User{}, apperr.Wrap(apperr.Internal, "Failed to register for course", err)
	}

	if student.RegisteredFor(courseID) {
		return types.User{}, apperr.New(apperr.Conflict, "Student is already registered for this course")
	}

	student.RegisteredCourseIDs = append(student.RegisteredCourseIDs, courseID)
	updated, err := s.users.Update(ctx, student)
	if err != nil {
		return types.User{}, apperr.Wrap(apperr.Internal, "Failed to register for course", err)
	}

	s.publisher.CourseRegistered(ctx, studentID, courseID)
	return updated, nil
}

// StudentCourses resolves the courses a student is registered for.
// Only the student themselves or an admin may ask.
func (s *CourseService) StudentCourses(ctx context.Context, caller policy.Caller, studentID int) ([]types.Course, error) {
	if decision := policy.Decide(caller, policy.ActionCourseStudent, policy.Resource{Kind: policy.KindCourse, OwnerID: studentID}); !decision.Allowed {
		return nil, apperr.New(apperr.Forbidden, decision.Reason)
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Student with ID %d not found", studentID)
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch student courses", err)
	}

	courses, err := s.repo.ListByIDs(ctx, student.RegisteredCourseIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch student courses", err)
	}
	return courses, nil
}
