package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/repository"
	"github.com/stemsi/onlinexam-backend/internal/response"
)

// ErrLastAdmin is returned when a change would leave no active administrator.
var ErrLastAdmin = errors.New("cannot remove the last active administrator")

// UserService handles admin management of accounts.
type UserService struct {
	userRepo    *repository.UserRepository
	authService *AuthService
	log         zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, authService *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		authService: authService,
		log:         log.With().Str("component", "user_service").Logger(),
	}
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]model.User, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	users, total, err := s.userRepo.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	return users, response.NewPagination(page, perPage, total), nil
}

// GetByID returns one user.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	return u, translate(err)
}

// Create adds an account with a hashed password.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		PasswordHash:   hash,
		Role:           req.Role,
		ProfilePicture: req.ProfilePicture,
		Status:         req.Status,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, translate(err)
	}

	s.log.Info().Int("user_id", u.ID).Int("role", int(u.Role)).Msg("User created")
	return u, nil
}

// Update rewrites an account. A blank password keeps the current one.
func (s *UserService) Update(ctx context.Context, id int, req *model.UpdateUserRequest) (*model.User, error) {
	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	demoting := current.IsAdmin() && current.Status == model.UserStatusActive &&
		(req.Role != model.RoleAdmin || req.Status != model.UserStatusActive)
	if demoting {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	u := &model.User{
		ID:             id,
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		Role:           req.Role,
		ProfilePicture: req.ProfilePicture,
		Status:         req.Status,
		Version:        req.Version,
	}
	if req.Password != "" {
		if u.PasswordHash, err = s.authService.HashPassword(req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// Delete removes an account and its attempt history.
func (s *UserService) Delete(ctx context.Context, id int) error {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if u.IsAdmin() && u.Status == model.UserStatusActive {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.log.Info().Int("user_id", id).Msg("User deleted")
	return nil
}

func (s *UserService) ensureAnotherAdmin(ctx context.Context) error {
	n, err := s.userRepo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}
