package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/repository"
)

// QuestionService handles question CRUD. Every write drops the cached copy
// of the affected exam.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	examService  *ExamService
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, examService *ExamService, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		examService:  examService,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// ListByExam returns an exam's questions with answers, for editing.
func (s *QuestionService) ListByExam(ctx context.Context, examID int) ([]model.Question, error) {
	exam, err := s.examService.GetWithQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}
	return exam.Questions, nil
}

func (s *QuestionService) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	return q, translate(err)
}

func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		ExamID:       req.ExamID,
		QuestionText: req.QuestionText,
		Options:      req.Options,
		Answer:       req.Answer,
		OrderNum:     req.OrderNum,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, translate(err)
	}
	s.examService.Invalidate(ctx, q.ExamID)
	return q, nil
}

// Update rewrites a question, which may move it to another exam.
func (s *QuestionService) Update(ctx context.Context, id int, req *model.UpdateQuestionRequest) (*model.Question, error) {
	before, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	q := &model.Question{
		ID:           id,
		ExamID:       req.ExamID,
		QuestionText: req.QuestionText,
		Options:      req.Options,
		Answer:       req.Answer,
		OrderNum:     req.OrderNum,
		Version:      req.Version,
	}
	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, translate(err)
	}

	s.examService.Invalidate(ctx, before.ExamID)
	if before.ExamID != q.ExamID {
		s.examService.Invalidate(ctx, q.ExamID)
	}
	return q, nil
}

func (s *QuestionService) Delete(ctx context.Context, id int) error {
	examID, err := s.questionRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: question %d", ErrNotFound, id)
		}
		return translate(err)
	}
	s.examService.Invalidate(ctx, examID)
	return nil
}
