package model

import "time"

// Attempt is the persisted record of one completed exam submission.
// Attempt numbers start at 1 and count per user and exam.
type Attempt struct {
	UserID        int       `json:"user_id,omitempty"`
	ExamID        int       `json:"exam_id"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	AttemptNumber int       `json:"attempt_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// SelectAnswerRequest is the payload for choosing an option for one question.
type SelectAnswerRequest struct {
	Answer string `json:"answer" binding:"required,max=500"`
}
