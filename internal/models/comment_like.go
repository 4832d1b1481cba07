package models

import "time"

// CommentLike represents a like on a comment
type CommentLike struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	CommentID uint      `json:"comment_id" gorm:"primaryKey;autoIncrement:false;index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Comment   *Comment  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}
