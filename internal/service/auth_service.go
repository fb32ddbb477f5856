package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/onlinexam-backend/internal/config"
	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrPasswordMismatch   = errors.New("current password does not match")
	ErrTokenExpired       = errors.New("token expired")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID int        `json:"user_id"`
	Role   model.Role `json:"role"`
}

// IsAdmin reports whether the token carries the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// AuthService handles passwords, JWTs, login and the caller's own profile.
type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken signs a JWT carrying the user's id and role.
func (s *AuthService) GenerateToken(u *model.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: u.ID,
		Role:   u.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// Login authenticates by username or email and issues a token.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	u, err := s.userRepo.GetByIdentifier(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	if u.Status != model.UserStatusActive {
		return nil, ErrAccountInactive
	}

	token, err := s.GenerateToken(u)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", u.ID).Msg("User logged in")
	return &model.LoginResponse{Token: token, User: *u}, nil
}

// Register creates an active, non-admin account.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, translate(err)
	}

	s.log.Info().Int("user_id", u.ID).Str("username", u.Username).Msg("User registered")
	return u, nil
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, userID int) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	return u, translate(err)
}

// UpdateProfile changes the caller's email and picture.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int, req *model.UpdateProfileRequest) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}

	u.Email = strings.ToLower(req.Email)
	u.ProfilePicture = req.ProfilePicture
	u.Version = req.Version
	u.PasswordHash = ""

	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, req *model.ChangePasswordRequest) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return translate(err)
	}
	if err := s.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
		return ErrPasswordMismatch
	}

	hash, err := s.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return translate(err)
	}

	s.log.Info().Int("user_id", userID).Msg("Password changed")
	return nil
}
