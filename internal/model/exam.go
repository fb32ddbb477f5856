package model

import "time"

// Exam represents a timed, ordered collection of questions.
// The question order is significant: index i is answer slot i.
type Exam struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"duration"`
	SubjectID       *int       `json:"subject_id,omitempty"`
	Questions       []Question `json:"questions,omitempty"`
	Version         int        `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=255"`
	Description     string `json:"description" binding:"max=5000"`
	DurationMinutes int    `json:"duration" binding:"required,min=1,max=480"`
	SubjectID       *int   `json:"subject_id" binding:"omitempty,min=1"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=255"`
	Description     string `json:"description" binding:"max=5000"`
	DurationMinutes int    `json:"duration" binding:"required,min=1,max=480"`
	SubjectID       *int   `json:"subject_id" binding:"omitempty,min=1"`
	Version         int    `json:"version" binding:"required,min=1"`
}

// ExamPayload is the cached, taker-facing view of an exam (no correct answers).
type ExamPayload struct {
	ExamID      int                `json:"exam_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Duration    int                `json:"duration"`
	Questions   []QuestionForTaker `json:"questions"`
}

// Payload strips the answers from e.
func (e *Exam) Payload() ExamPayload {
	qs := make([]QuestionForTaker, len(e.Questions))
	for i, q := range e.Questions {
		qs[i] = QuestionForTaker{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			Index:        i,
		}
	}
	return ExamPayload{
		ExamID:      e.ID,
		Title:       e.Title,
		Description: e.Description,
		Duration:    e.DurationMinutes,
		Questions:   qs,
	}
}
