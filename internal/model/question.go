package model

import "time"

// Question is a multiple-choice prompt with exactly one correct option.
type Question struct {
	ID           int       `json:"id"`
	ExamID       int       `json:"exam_id"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
	Answer       string    `json:"answer"`
	OrderNum     int       `json:"order_num"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// QuestionForTaker is a question without the correct answer.
type QuestionForTaker struct {
	ID           int      `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Index        int      `json:"index"`
}

// CreateQuestionRequest is the payload for adding a question to an exam.
// The answer must match one of the options (answer_in_options).
type CreateQuestionRequest struct {
	ExamID       int      `json:"exam_id" binding:"required,min=1"`
	QuestionText string   `json:"question_text" binding:"required,min=1,max=2000"`
	Options      []string `json:"options" binding:"required,min=2,max=10,unique,dive,required,max=500"`
	Answer       string   `json:"answer" binding:"required,max=500"`
	OrderNum     int      `json:"order_num" binding:"min=0"`
}

// UpdateQuestionRequest is the payload for updating a question.
type UpdateQuestionRequest struct {
	ExamID       int      `json:"exam_id" binding:"required,min=1"`
	QuestionText string   `json:"question_text" binding:"required,min=1,max=2000"`
	Options      []string `json:"options" binding:"required,min=2,max=10,unique,dive,required,max=500"`
	Answer       string   `json:"answer" binding:"required,max=500"`
	OrderNum     int      `json:"order_num" binding:"min=0"`
	Version      int      `json:"version" binding:"required,min=1"`
}
