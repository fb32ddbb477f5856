package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/onlinexam-backend/internal/config"
	"github.com/stemsi/onlinexam-backend/internal/database"
	"github.com/stemsi/onlinexam-backend/internal/importer"
	"github.com/stemsi/onlinexam-backend/internal/logger"
	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/repository"
)

// repoSink writes imported records through the catalog repositories.
type repoSink struct {
	users     *repository.UserRepository
	courses   *repository.CourseRepository
	subjects  *repository.SubjectRepository
	exams     *repository.ExamRepository
	questions *repository.QuestionRepository
}

func newRepoSink(pool *pgxpool.Pool) *repoSink {
	return &repoSink{
		users:     repository.NewUserRepository(pool),
		courses:   repository.NewCourseRepository(pool),
		subjects:  repository.NewSubjectRepository(pool),
		exams:     repository.NewExamRepository(pool),
		questions: repository.NewQuestionRepository(pool),
	}
}

func (s *repoSink) CreateUser(ctx context.Context, u *model.User) error {
	return s.users.Create(ctx, u)
}

func (s *repoSink) CreateCourse(ctx context.Context, c *model.Course) error {
	return s.courses.Create(ctx, c)
}

func (s *repoSink) CreateSubject(ctx context.Context, sub *model.Subject) error {
	return s.subjects.Create(ctx, sub)
}

func (s *repoSink) CreateExam(ctx context.Context, e *model.Exam) error {
	return s.exams.Create(ctx, e)
}

func (s *repoSink) CreateQuestion(ctx context.Context, q *model.Question) error {
	return s.questions.Create(ctx, q)
}

func main() {
	var (
		file   string
		dryRun bool
	)
	flag.StringVar(&file, "file", "", "Legacy database file (.json, or .yaml/.yml fixture)")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the file without writing anything")
	flag.Parse()

	if file == "" {
		fmt.Fprintln(os.Stderr, "Usage: import-json -file db.json [-dry-run]")
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ds, err := importer.LoadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to load dataset")
	}

	if dryRun {
		if err := importer.New(nil, cfg.BcryptCost, log).Check(ds); err != nil {
			log.Fatal().Err(err).Msg("Dataset is not importable")
		}
		log.Info().
			Int("users", len(ds.Users)).
			Int("courses", len(ds.Courses)).
			Int("subjects", len(ds.Subjects)).
			Int("exams", len(ds.Exams)).
			Msg("Dataset is valid")
		return
	}

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rep, err := importer.New(newRepoSink(pool), cfg.BcryptCost, log).Run(ctx, ds)
	if err != nil {
		out, _ := json.Marshal(rep)
		log.Fatal().Err(err).RawJSON("written", out).Msg("Import failed")
	}

	out, _ := json.MarshalIndent(rep, "", "  ")
	fmt.Println(string(out))
}
