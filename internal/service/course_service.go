package service

import (
	"context"

	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/repository"
)

type CourseService struct {
	repo *repository.CourseRepository
}

func NewCourseService(repo *repository.CourseRepository) *CourseService {
	return &CourseService{repo: repo}
}

func (s *CourseService) GetAll(ctx context.Context) ([]model.Course, error) {
	return s.repo.GetAll(ctx)
}

func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	return c, translate(err)
}

func (s *CourseService) Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error) {
	c := &model.Course{Title: req.Title, Description: req.Description, Img: req.Img}
	return c, translate(s.repo.Create(ctx, c))
}

func (s *CourseService) Update(ctx context.Context, id int, req *model.UpdateCourseRequest) (*model.Course, error) {
	c := &model.Course{ID: id, Title: req.Title, Description: req.Description, Img: req.Img, Version: req.Version}
	return c, translate(s.repo.Update(ctx, c))
}

func (s *CourseService) Delete(ctx context.Context, id int) error {
	return translate(s.repo.Delete(ctx, id))
}
