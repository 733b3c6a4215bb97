package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskcourse/apiserver/internal/services"
	"github.com/taskcourse/apiserver/types"
)

// CourseHandler provides HTTP handlers for courses and registrations.
type CourseHandler struct {
	courseService *services.CourseService
}

func NewCourseHandler(courseService *services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CourseRouter registers course routes on the given router. Reads are
// public; everything else requires an authenticated caller.
func CourseRouter(r chi.Router, courseService *services.CourseService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewCourseHandler(courseService)

	r.Get("/", handler.ListCourses)
	r.With(authMiddleware).Post("/", handler.CreateCourse)
	r.With(authMiddleware).Get("/student/{studentID}", handler.StudentCourses)
	r.Route("/{courseID}", func(r chi.Router) {
		r.Get("/", handler.GetCourse)
		r.With(authMiddleware).Put("/", handler.UpdateCourse)
		r.With(authMiddleware).Delete("/", handler.DeleteCourse)
		r.With(authMiddleware).Post("/register", handler.Register)
	})
}

type CreateCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

type CoursePayload struct {
	Course types.Course `json:"course"`
}

type CourseListPayload struct {
	Courses []types.Course `json:"courses"`
}

func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	startDate, okStart := parseDate(req.StartDate)
	endDate, okEnd := parseDate(req.EndDate)
	if !okStart || !okEnd || startDate == nil || endDate == nil {
		writeError(w, r, http.StatusBadRequest, "Invalid or missing course dates")
		return
	}

	course, err := h.courseService.Create(r.Context(), caller, services.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   *startDate,
		EndDate:     *endDate,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Course successfully created", CoursePayload{Course: course})
}

func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Courses retrieved successfully", CourseListPayload{Courses: courses})
}

func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "courseID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	course, err := h.courseService.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Course retrieved successfully", CoursePayload{Course: course})
}

func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "courseID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	var req UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.UpdateCourseInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.StartDate != nil {
		startDate, ok := parseDate(*req.StartDate)
		if !ok || startDate == nil {
			writeError(w, r, http.StatusBadRequest, "Invalid start date")
			return
		}
		in.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, ok := parseDate(*req.EndDate)
		if !ok || endDate == nil {
			writeError(w, r, http.StatusBadRequest, "Invalid end date")
			return
		}
		in.EndDate = endDate
	}

	course, err := h.courseService.Update(r.Context(), caller, id, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Course updated successfully", CoursePayload{Course: course})
}

func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "courseID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	if err := h.courseService.Delete(r.Context(), caller, id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Course deleted successfully", nil)
}

// Register enrolls the caller in a course.
func (h *CourseHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "courseID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	user, err := h.courseService.Register(r.Context(), caller, id, caller.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Successfully registered for course", UserPayload{User: user})
}

// StudentCourses lists the courses a student is registered for.
func (h *CourseHandler) StudentCourses(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "studentID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid student ID format")
		return
	}

	courses, err := h.courseService.StudentCourses(r.Context(), caller, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Courses retrieved successfully", CourseListPayload{Courses: courses})
}

func parseDate(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}
