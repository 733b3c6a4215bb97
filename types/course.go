package types

import "time"

// Course represents a course students can register for.
// Courses are managed by administrators and readable by anyone.
type Course struct {
	// ID is the unique identifier of the course.
	ID int `json:"id" db:"id"`

	// Title is the course title, unique across all courses.
	Title string `json:"title" db:"title"`

	// Description is an optional summary of the course contents.
	Description string `json:"description,omitempty" db:"description"`

	// StartDate is when the course begins.
	StartDate time.Time `json:"start_date" db:"start_date"`

	// EndDate is when the course ends.
	EndDate time.Time `json:"end_date" db:"end_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
