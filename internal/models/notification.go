package models

import "time"

// NotificationType classifies why a notification was raised
type NotificationType string

const (
	NotificationApproval NotificationType = "approval"
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
)

// Notification represents a pulled user notification (PostgreSQL)
type Notification struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	UserID        uint             `json:"user_id" gorm:"index;not null"` // recipient
	User          *User            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Type          NotificationType `json:"type" gorm:"size:20;index;not null"`
	Message       string           `json:"message" gorm:"size:255;not null"`
	RelatedUserID *uint            `json:"related_user_id,omitempty" gorm:"index"`
	RelatedUser   *User            `json:"-" gorm:"foreignKey:RelatedUserID;constraint:OnDelete:CASCADE"`
	RelatedPostID *uint            `json:"related_post_id,omitempty" gorm:"index"`
	RelatedPost   *Post            `json:"-" gorm:"foreignKey:RelatedPostID;constraint:OnDelete:CASCADE"`
	IsRead        bool             `json:"is_read" gorm:"index;not null"`
	CreatedAt     time.Time        `json:"created_at" gorm:"index"`
}
