package model

import "time"

// Subject represents an exam subject belonging to a course.
type Subject struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CourseID    int       `json:"course_id"`
	Img         string    `json:"img"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"max=5000"`
	CourseID    int    `json:"course_id" binding:"required,min=1"`
	Img         string `json:"img" binding:"omitempty,max=500"`
}

// UpdateSubjectRequest is the payload for updating a subject.
type UpdateSubjectRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"max=5000"`
	CourseID    int    `json:"course_id" binding:"required,min=1"`
	Img         string `json:"img" binding:"omitempty,max=500"`
	Version     int    `json:"version" binding:"required,min=1"`
}
