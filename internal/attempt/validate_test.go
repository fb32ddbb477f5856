package attempt

import (
	"errors"
	"testing"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

func validExam() *model.Exam {
	return &model.Exam{
		ID:              1,
		Title:           "Algebra",
		DurationMinutes: 30,
		Questions:       questionsWithAnswers("A", "B"),
	}
}

func TestValidateExam(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *model.Exam)
		wantErr bool
	}{
		{name: "valid", mutate: func(e *model.Exam) {}},
		{name: "no questions is allowed", mutate: func(e *model.Exam) { e.Questions = nil }},
		{name: "zero id", mutate: func(e *model.Exam) { e.ID = 0 }, wantErr: true},
		{name: "empty title", mutate: func(e *model.Exam) { e.Title = "" }, wantErr: true},
		{name: "zero duration", mutate: func(e *model.Exam) { e.DurationMinutes = 0 }, wantErr: true},
		{name: "answer not among options", mutate: func(e *model.Exam) { e.Questions[0].Answer = "Z" }, wantErr: true},
		{name: "answer matches two options", mutate: func(e *model.Exam) {
			e.Questions[0].Options = []string{"A", "A", "B"}
		}, wantErr: true},
		{name: "single option", mutate: func(e *model.Exam) {
			e.Questions[1].Options = []string{"B"}
		}, wantErr: true},
		{name: "duplicate question id", mutate: func(e *model.Exam) { e.Questions[1].ID = e.Questions[0].ID }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := validExam()
			tc.mutate(e)
			err := ValidateExam(e)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedExam) {
					t.Fatalf("ValidateExam() = %v, want ErrMalformedExam", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateExam() = %v, want nil", err)
			}
		})
	}
}

func TestValidateExamNil(t *testing.T) {
	if err := ValidateExam(nil); !errors.Is(err, ErrMalformedExam) {
		t.Fatalf("ValidateExam(nil) = %v", err)
	}
}
