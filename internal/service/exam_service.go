package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/config"
	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/repository"
	"github.com/stemsi/onlinexam-backend/internal/response"
)

// ExamService handles exam CRUD and loads exams for taking, with a Redis
// read-through cache of the full exam.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	cacheTTL     time.Duration
	log          zerolog.Logger
}

// NewExamService creates a new ExamService. A nil rdb disables caching.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		cacheTTL:     cfg.ExamCacheTTL,
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// Load returns exam id with its questions in taking order. The result is
// validated and must be treated as read-only; it may be shared between
// sessions.
func (s *ExamService) Load(ctx context.Context, id int) (*model.Exam, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: exam id %d", attempt.ErrPrecondition, id)
	}

	if exam, ok := s.cached(ctx, id); ok {
		return exam, nil
	}

	exam, err := s.GetWithQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := attempt.ValidateExam(exam); err != nil {
		s.log.Error().Err(err).Int("exam_id", id).Msg("Refusing malformed exam")
		return nil, err
	}

	s.store(ctx, exam)
	return exam, nil
}

// Detail returns the taker-facing view of an exam, without answers.
func (s *ExamService) Detail(ctx context.Context, id int) (*model.ExamPayload, error) {
	exam, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	payload := exam.Payload()
	return &payload, nil
}

// GetWithQuestions reads an exam and its questions straight from PostgreSQL.
func (s *ExamService) GetWithQuestions(ctx context.Context, id int) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrExamNotFound, id)
		}
		return nil, fmt.Errorf("get exam %d: %w", id, err)
	}

	questions, err := s.questionRepo.ListByExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list questions of exam %d: %w", id, err)
	}
	exam.Questions = questions
	return exam, nil
}

// List returns one page of exams, optionally restricted to a subject.
func (s *ExamService) List(ctx context.Context, subjectID, page, perPage int) ([]model.Exam, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	exams, total, err := s.examRepo.ListPaginated(ctx, subjectID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	return exams, response.NewPagination(page, perPage, total), nil
}

// Create inserts a new exam without questions.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		SubjectID:       req.SubjectID,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, translate(err)
	}
	s.log.Info().Int("exam_id", exam.ID).Msg("Exam created")
	return exam, nil
}

// Update rewrites an exam's metadata and drops its cached copy.
func (s *ExamService) Update(ctx context.Context, id int, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		ID:              id,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		SubjectID:       req.SubjectID,
		Version:         req.Version,
	}
	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, translate(err)
	}
	s.Invalidate(ctx, id)
	return exam, nil
}

// Delete removes an exam with its questions. Attempt history is kept.
func (s *ExamService) Delete(ctx context.Context, id int) error {
	if err := s.examRepo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.Invalidate(ctx, id)
	s.log.Info().Int("exam_id", id).Msg("Exam deleted")
	return nil
}

// Invalidate drops the cached copy of an exam. Failures are logged only;
// the entry expires on its own.
func (s *ExamService) Invalidate(ctx context.Context, id int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.ExamPayloadKey(id)).Err(); err != nil {
		s.log.Warn().Err(err).Int("exam_id", id).Msg("Failed to invalidate exam cache")
	}
}

// PrewarmCache loads the most recent exams into Redis on startup.
func (s *ExamService) PrewarmCache(ctx context.Context, limit int) error {
	if s.rdb == nil {
		return nil
	}
	exams, _, err := s.examRepo.ListPaginated(ctx, 0, limit, 0)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}

	warmed := 0
	for _, e := range exams {
		if _, err := s.Load(ctx, e.ID); err != nil {
			s.log.Warn().Err(err).Int("exam_id", e.ID).Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().Int("warmed", warmed).Int("total", len(exams)).Msg("Prewarming complete")
	return nil
}

func (s *ExamService) cached(ctx context.Context, id int) (*model.Exam, bool) {
	if s.rdb == nil {
		return nil, false
	}
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamPayloadKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Int("exam_id", id).Msg("Exam cache read failed, using database")
		}
		return nil, false
	}

	var exam model.Exam
	if err := json.Unmarshal(data, &exam); err != nil {
		s.log.Warn().Err(err).Int("exam_id", id).Msg("Discarding undecodable cached exam")
		return nil, false
	}
	if err := attempt.ValidateExam(&exam); err != nil {
		s.log.Warn().Err(err).Int("exam_id", id).Msg("Discarding malformed cached exam")
		return nil, false
	}
	return &exam, true
}

func (s *ExamService) store(ctx context.Context, exam *model.Exam) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(exam)
	if err != nil {
		s.log.Warn().Err(err).Int("exam_id", exam.ID).Msg("Failed to encode exam for cache")
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ExamPayloadKey(exam.ID), data, s.cacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Int("exam_id", exam.ID).Msg("Failed to cache exam")
		return
	}

	s.log.Debug().Int("exam_id", exam.ID).Int("questions", len(exam.Questions)).Msg("Exam cached")
}
