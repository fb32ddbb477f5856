package service

import (
	"context"

	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/repository"
)

type SubjectService struct {
	repo *repository.SubjectRepository
}

func NewSubjectService(repo *repository.SubjectRepository) *SubjectService {
	return &SubjectService{repo: repo}
}

// GetAll lists subjects; courseID > 0 restricts to one course.
func (s *SubjectService) GetAll(ctx context.Context, courseID int) ([]model.Subject, error) {
	return s.repo.GetAll(ctx, courseID)
}

func (s *SubjectService) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	sub, err := s.repo.GetByID(ctx, id)
	return sub, translate(err)
}

func (s *SubjectService) Create(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error) {
	sub := &model.Subject{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
		Img:         req.Img,
	}
	return sub, translate(s.repo.Create(ctx, sub))
}

func (s *SubjectService) Update(ctx context.Context, id int, req *model.UpdateSubjectRequest) (*model.Subject, error) {
	sub := &model.Subject{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
		Img:         req.Img,
		Version:     req.Version,
	}
	return sub, translate(s.repo.Update(ctx, sub))
}

func (s *SubjectService) Delete(ctx context.Context, id int) error {
	return translate(s.repo.Delete(ctx, id))
}
