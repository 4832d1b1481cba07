package models

import "time"

// PostLike is the like edge between a user and a post.
// The composite primary key allows at most one edge per pair.
type PostLike struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	PostID    uint      `json:"post_id" gorm:"primaryKey;autoIncrement:false;index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Post      *Post     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}
