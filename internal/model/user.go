package model

import "time"

// Role distinguishes administrators from regular exam takers.
type Role int

const (
	RoleUser  Role = 0
	RoleAdmin Role = 1
)

// UserStatus marks whether an account may log in.
type UserStatus int

const (
	UserStatusInactive UserStatus = 0
	UserStatusActive   UserStatus = 1
)

// User represents an account of either role.
type User struct {
	ID             int        `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	ProfilePicture string     `json:"profile_picture"`
	Status         UserStatus `json:"status"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginRequest accepts either a username or an email as the identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required,min=3,max=255"`
	Password   string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the self-service sign-up payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// CreateUserRequest is the admin payload for creating an account.
type CreateUserRequest struct {
	Username       string     `json:"username" binding:"required,alphanum,min=3,max=50"`
	Email          string     `json:"email" binding:"required,email,max=255"`
	Password       string     `json:"password" binding:"required,min=6,max=128"`
	Role           Role       `json:"role" binding:"oneof=0 1"`
	ProfilePicture string     `json:"profile_picture" binding:"omitempty,max=500"`
	Status         UserStatus `json:"status" binding:"oneof=0 1"`
}

// UpdateUserRequest is the admin payload for updating an account.
// Password is only changed when non-empty.
type UpdateUserRequest struct {
	Username       string     `json:"username" binding:"required,alphanum,min=3,max=50"`
	Email          string     `json:"email" binding:"required,email,max=255"`
	Password       string     `json:"password" binding:"omitempty,min=6,max=128"`
	Role           Role       `json:"role" binding:"oneof=0 1"`
	ProfilePicture string     `json:"profile_picture" binding:"omitempty,max=500"`
	Status         UserStatus `json:"status" binding:"oneof=0 1"`
	Version        int        `json:"version" binding:"required,min=1"`
}

// UpdateProfileRequest lets a user edit their own profile.
type UpdateProfileRequest struct {
	Email          string `json:"email" binding:"required,email,max=255"`
	ProfilePicture string `json:"profile_picture" binding:"omitempty,max=500"`
	Version        int    `json:"version" binding:"required,min=1"`
}

// ChangePasswordRequest is the payload for changing one's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}
