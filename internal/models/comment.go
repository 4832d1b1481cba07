package models

import "time"

// Comment represents a comment on a post. PostID never changes after creation.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	Post      *Post     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1,max=500"`
}
