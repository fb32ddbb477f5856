package model

import "time"

// Course is a preparation course grouping several subjects.
type Course struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Img         string    `json:"img"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Img         string `json:"img" binding:"omitempty,max=500"`
}

// UpdateCourseRequest is the payload for updating a course.
type UpdateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Img         string `json:"img" binding:"omitempty,max=500"`
	Version     int    `json:"version" binding:"required,min=1"`
}
