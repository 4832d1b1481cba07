package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultProfileImage is the profile image reference every new user starts with
const DefaultProfileImage = "default_profile.jpg"

// User represents a team member (PostgreSQL)
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:20;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never serialised
	DisplayName  string    `json:"display_name" gorm:"size:50;not null"`
	Bio          string    `json:"bio" gorm:"size:500"`
	ProfileImage string    `json:"profile_image" gorm:"size:255"`
	IsApproved   bool      `json:"is_approved" gorm:"index;not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCompact is the author block embedded in posts, comments and listings
type UserCompact struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	ProfileImage string `json:"profile_image"`
}

// ToCompact converts a user into its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:           u.ID,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		ProfileImage: u.ProfileImage,
	}
}

// CanModerate reports whether the user holds the administrator role
func (u *User) CanModerate() bool {
	return u != nil && u.IsAdmin
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	Username    string `json:"username" form:"username" validate:"required,min=3,max=20"`
	Email       string `json:"email" form:"email" validate:"required,email,max=120"`
	DisplayName string `json:"display_name" form:"display_name" validate:"required,min=2,max=50"`
	Password    string `json:"password" form:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for username/password login
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UpdateProfileRequest defines the editable profile fields
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" form:"display_name" validate:"required,min=2,max=50"`
	Bio         string `json:"bio" form:"bio" validate:"max=500"`
}

// ChangePasswordRequest defines the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
