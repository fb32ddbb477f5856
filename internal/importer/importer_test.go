package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/model"
)

type fakeSink struct {
	nextID    int
	users     []*model.User
	courses   []*model.Course
	subjects  []*model.Subject
	exams     []*model.Exam
	questions []*model.Question
	failExam  bool
}

func (f *fakeSink) id() int {
	f.nextID++
	return 100 + f.nextID
}

func (f *fakeSink) CreateUser(_ context.Context, u *model.User) error {
	u.ID = f.id()
	f.users = append(f.users, u)
	return nil
}

func (f *fakeSink) CreateCourse(_ context.Context, c *model.Course) error {
	c.ID = f.id()
	f.courses = append(f.courses, c)
	return nil
}

func (f *fakeSink) CreateSubject(_ context.Context, s *model.Subject) error {
	s.ID = f.id()
	f.subjects = append(f.subjects, s)
	return nil
}

func (f *fakeSink) CreateExam(_ context.Context, e *model.Exam) error {
	if f.failExam {
		return errors.New("insert failed")
	}
	e.ID = f.id()
	f.exams = append(f.exams, e)
	return nil
}

func (f *fakeSink) CreateQuestion(_ context.Context, q *model.Question) error {
	q.ID = f.id()
	f.questions = append(f.questions, q)
	return nil
}

func TestRunLegacyJSON(t *testing.T) {
	ds, err := LoadFile("testdata/db.json")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	sink := &fakeSink{}
	rep, err := New(sink, bcrypt.MinCost, zerolog.Nop()).Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := Report{Users: 2, Courses: 1, Subjects: 1, Exams: 2, Questions: 2}
	if *rep != want {
		t.Fatalf("report = %+v, want %+v", *rep, want)
	}

	admin := sink.users[0]
	if admin.Email != "admin@example.com" || admin.Role != model.RoleAdmin {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("123456")); err != nil {
		t.Fatalf("plaintext password not hashed: %v", err)
	}
	if got := sink.users[1].PasswordHash; got != ds.Users[1].Password {
		t.Fatalf("existing hash rewritten: %q", got)
	}
	if sink.users[1].Status != model.UserStatusInactive {
		t.Fatalf("status not carried over: %+v", sink.users[1])
	}

	if sink.subjects[0].CourseID != sink.courses[0].ID {
		t.Fatalf("subject course not remapped: %d vs %d", sink.subjects[0].CourseID, sink.courses[0].ID)
	}
	mech := sink.exams[0]
	if mech.SubjectID == nil || *mech.SubjectID != sink.subjects[0].ID {
		t.Fatalf("exam subject not remapped: %v", mech.SubjectID)
	}
	if sink.exams[1].SubjectID != nil {
		t.Fatalf("orphan exam linked to %d", *sink.exams[1].SubjectID)
	}

	// The embedded copy of question 1 wins; the flat duplicate is skipped.
	if len(sink.questions) != 2 {
		t.Fatalf("questions = %d", len(sink.questions))
	}
	for i, q := range sink.questions {
		if q.ExamID != mech.ID || q.OrderNum != i+1 {
			t.Fatalf("question %d: %+v", i, q)
		}
	}
	if sink.questions[1].QuestionText != "Unit of energy?" {
		t.Fatalf("unexpected order: %+v", sink.questions)
	}
}

func TestLoadYAMLFixture(t *testing.T) {
	ds, err := LoadFile("testdata/fixture.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(ds.Exams) != 1 || len(ds.Questions) != 1 || ds.Questions[0].Text != "Opposite of hot?" {
		t.Fatalf("unexpected dataset: %+v", ds)
	}

	sink := &fakeSink{}
	rep, err := New(sink, bcrypt.MinCost, zerolog.Nop()).Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Exams != 1 || rep.Questions != 1 || rep.Users != 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[]`},
		{"exam without duration", `{"exams":[{"id":1,"title":"x"}]}`},
		{"one option", `{"questions":[{"id":1,"examId":1,"questions":"q","options":["a"],"answer":"a"}]}`},
		{"flat question without exam", `{"questions":[{"id":1,"questions":"q","options":["a","b"],"answer":"a"}]}`},
		{"bad email", `{"users":[{"id":1,"username":"abc","email":"nope","password":"x"}]}`},
		{"unknown role", `{"users":[{"id":1,"username":"abc","email":"a@b.co","password":"x","role":7}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(tc.doc)); !errors.Is(err, ErrInvalidDataset) {
				t.Fatalf("err = %v, want ErrInvalidDataset", err)
			}
		})
	}
}

func TestRunRejectsMalformedExamsBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		ds      Dataset
		wantErr error
	}{
		{
			name: "answer not among options",
			ds: Dataset{
				Exams:     []LegacyExam{{ID: 1, Title: "x", Duration: 5}},
				Questions: []LegacyQuestion{{ID: 1, ExamID: 1, Text: "q", Options: []string{"a", "b"}, Answer: "c"}},
			},
			wantErr: attempt.ErrMalformedExam,
		},
		{
			name: "question for unknown exam",
			ds: Dataset{
				Exams:     []LegacyExam{{ID: 1, Title: "x", Duration: 5}},
				Questions: []LegacyQuestion{{ID: 1, ExamID: 2, Text: "q", Options: []string{"a", "b"}, Answer: "a"}},
			},
			wantErr: ErrInvalidDataset,
		},
		{
			name:    "repeated exam id",
			ds:      Dataset{Exams: []LegacyExam{{ID: 1, Title: "x", Duration: 5}, {ID: 1, Title: "y", Duration: 5}}},
			wantErr: ErrInvalidDataset,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sink := &fakeSink{}
			_, err := New(sink, bcrypt.MinCost, zerolog.Nop()).Run(context.Background(), &tc.ds)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if sink.nextID != 0 {
				t.Fatalf("wrote %d records before failing", sink.nextID)
			}
		})
	}
}

func TestRunUnknownCourse(t *testing.T) {
	ds := &Dataset{Subjects: []LegacySubject{{ID: 1, Title: "x", CourseID: 9}}}
	_, err := New(&fakeSink{}, bcrypt.MinCost, zerolog.Nop()).Run(context.Background(), ds)
	if !errors.Is(err, ErrInvalidDataset) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunStopsOnSinkError(t *testing.T) {
	ds, err := LoadFile("testdata/fixture.yaml")
	if err != nil {
		t.Fatal(err)
	}
	sink := &fakeSink{failExam: true}
	rep, err := New(sink, bcrypt.MinCost, zerolog.Nop()).Run(context.Background(), ds)
	if err == nil {
		t.Fatal("expected error")
	}
	if rep.Courses != 1 || rep.Subjects != 1 || rep.Exams != 0 {
		t.Fatalf("report = %+v", rep)
	}
}
