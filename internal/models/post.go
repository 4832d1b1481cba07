package models

import (
	"fmt"
	"time"
)

// Category is the closed set of feed categories a post can belong to
type Category string

const (
	CategoryNotice Category = "notice"
	CategoryDaily  Category = "daily"
	CategoryGame   Category = "game"
	CategoryMovie  Category = "movie"
)

// Categories lists every valid category in display order
var Categories = []Category{CategoryNotice, CategoryDaily, CategoryGame, CategoryMovie}

// ParseCategory converts raw input into a Category
func ParseCategory(raw string) (Category, error) {
	for _, c := range Categories {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// Post represents a feed post (PostgreSQL)
type Post struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	Category      Category  `json:"category" gorm:"size:20;index;not null"`
	ImageFilename *string   `json:"image_filename,omitempty" gorm:"size:255"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	User          *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string `json:"content" form:"content" validate:"required,min=1,max=2000"`
	Category string `json:"category" form:"category" validate:"required,oneof=notice daily game movie"`
}
