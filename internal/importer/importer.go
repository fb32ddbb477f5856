package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/model"
)

// Sink receives the converted records. Each Create assigns the new ID.
type Sink interface {
	CreateUser(ctx context.Context, u *model.User) error
	CreateCourse(ctx context.Context, c *model.Course) error
	CreateSubject(ctx context.Context, s *model.Subject) error
	CreateExam(ctx context.Context, e *model.Exam) error
	CreateQuestion(ctx context.Context, q *model.Question) error
}

// Report counts the records written by Run.
type Report struct {
	Users     int `json:"users"`
	Courses   int `json:"courses"`
	Subjects  int `json:"subjects"`
	Exams     int `json:"exams"`
	Questions int `json:"questions"`
}

// Importer writes a Dataset to a Sink, remapping legacy IDs to new ones.
type Importer struct {
	sink       Sink
	bcryptCost int
	log        zerolog.Logger
}

func New(sink Sink, bcryptCost int, log zerolog.Logger) *Importer {
	return &Importer{
		sink:       sink,
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "importer").Logger(),
	}
}

// Check validates every exam with its merged questions. Nothing is written.
func (im *Importer) Check(ds *Dataset) error {
	_, err := mergeExams(ds)
	return err
}

// Run validates the whole dataset first, then writes users, courses,
// subjects, exams and questions in that order. Writes are not undone when
// a later record fails.
func (im *Importer) Run(ctx context.Context, ds *Dataset) (*Report, error) {
	exams, err := mergeExams(ds)
	if err != nil {
		return nil, err
	}

	rep := &Report{}

	for _, lu := range ds.Users {
		u, err := im.convertUser(lu)
		if err != nil {
			return rep, err
		}
		if err := im.sink.CreateUser(ctx, u); err != nil {
			return rep, fmt.Errorf("user %d (%s): %w", lu.ID, lu.Username, err)
		}
		rep.Users++
	}

	courseIDs := make(map[int]int, len(ds.Courses))
	for _, lc := range ds.Courses {
		c := &model.Course{Title: lc.Title, Description: lc.Description, Img: lc.Img}
		if err := im.sink.CreateCourse(ctx, c); err != nil {
			return rep, fmt.Errorf("course %d: %w", lc.ID, err)
		}
		courseIDs[lc.ID] = c.ID
		rep.Courses++
	}

	subjectIDs := make(map[int]int, len(ds.Subjects))
	for _, ls := range ds.Subjects {
		courseID, ok := courseIDs[ls.CourseID]
		if !ok {
			return rep, fmt.Errorf("%w: subject %d references unknown course %d", ErrInvalidDataset, ls.ID, ls.CourseID)
		}
		s := &model.Subject{Title: ls.Title, Description: ls.Description, CourseID: courseID, Img: ls.Img}
		if err := im.sink.CreateSubject(ctx, s); err != nil {
			return rep, fmt.Errorf("subject %d: %w", ls.ID, err)
		}
		subjectIDs[ls.ID] = s.ID
		rep.Subjects++
	}

	for _, legacy := range exams {
		e := &model.Exam{
			Title:           legacy.Title,
			Description:     legacy.Description,
			DurationMinutes: legacy.DurationMinutes,
		}
		if legacy.SubjectID != nil {
			id, ok := subjectIDs[*legacy.SubjectID]
			if !ok {
				// Old records point at deleted subjects; keep the exam unlinked.
				im.log.Warn().Int("exam_id", legacy.ID).Int("subject_id", *legacy.SubjectID).Msg("Unknown subject, importing exam without one")
			} else {
				e.SubjectID = &id
			}
		}
		if err := im.sink.CreateExam(ctx, e); err != nil {
			return rep, fmt.Errorf("exam %d: %w", legacy.ID, err)
		}
		rep.Exams++

		for i, lq := range legacy.Questions {
			q := &model.Question{
				ExamID:       e.ID,
				QuestionText: lq.QuestionText,
				Options:      lq.Options,
				Answer:       lq.Answer,
				OrderNum:     i + 1,
			}
			if err := im.sink.CreateQuestion(ctx, q); err != nil {
				return rep, fmt.Errorf("question %d of exam %d: %w", lq.ID, legacy.ID, err)
			}
			rep.Questions++
		}
	}

	im.log.Info().
		Int("users", rep.Users).
		Int("courses", rep.Courses).
		Int("subjects", rep.Subjects).
		Int("exams", rep.Exams).
		Int("questions", rep.Questions).
		Msg("Import finished")
	return rep, nil
}

// convertUser hashes plaintext legacy passwords. Values that already look
// like bcrypt hashes are kept.
func (im *Importer) convertUser(lu LegacyUser) (*model.User, error) {
	hash := lu.Password
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		b, err := bcrypt.GenerateFromPassword([]byte(lu.Password), im.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password of user %d: %w", lu.ID, err)
		}
		hash = string(b)
	}

	status := model.UserStatusActive
	if lu.Status != nil {
		status = model.UserStatus(*lu.Status)
	}

	return &model.User{
		Username:       lu.Username,
		Email:          strings.ToLower(lu.Email),
		PasswordHash:   hash,
		Role:           model.Role(lu.Role),
		ProfilePicture: lu.ProfilePicture,
		Status:         status,
	}, nil
}

// mergeExams attaches flat questions to their exams after the embedded
// ones, skipping IDs already embedded, and validates each exam.
func mergeExams(ds *Dataset) ([]*model.Exam, error) {
	flat := make(map[int][]LegacyQuestion)
	for _, q := range ds.Questions {
		flat[q.ExamID] = append(flat[q.ExamID], q)
	}

	known := make(map[int]bool, len(ds.Exams))
	exams := make([]*model.Exam, 0, len(ds.Exams))
	var errs []error

	for _, le := range ds.Exams {
		if known[le.ID] {
			errs = append(errs, fmt.Errorf("%w: exam id %d repeated", ErrInvalidDataset, le.ID))
			continue
		}
		known[le.ID] = true

		e := &model.Exam{
			ID:              le.ID,
			Title:           le.Title,
			Description:     le.Description,
			DurationMinutes: le.Duration,
		}
		if le.SubjectID > 0 {
			sid := le.SubjectID
			e.SubjectID = &sid
		}

		seen := make(map[int]bool)
		for _, lq := range append(append([]LegacyQuestion{}, le.Questions...), flat[le.ID]...) {
			if seen[lq.ID] {
				continue
			}
			seen[lq.ID] = true
			e.Questions = append(e.Questions, model.Question{
				ID:           lq.ID,
				ExamID:       le.ID,
				QuestionText: lq.Text,
				Options:      lq.Options,
				Answer:       lq.Answer,
			})
		}

		if err := attempt.ValidateExam(e); err != nil {
			errs = append(errs, err)
			continue
		}
		exams = append(exams, e)
	}

	for examID, qs := range flat {
		if !known[examID] {
			errs = append(errs, fmt.Errorf("%w: %d question(s) reference unknown exam %d", ErrInvalidDataset, len(qs), examID))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return exams, nil
}
