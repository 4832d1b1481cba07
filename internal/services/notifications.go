package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxNotifications bounds a single ListFor call
const MaxNotifications = 20

// NotifyInput describes one notification to record
type NotifyInput struct {
	RecipientID   uint
	Type          models.NotificationType
	Message       string
	RelatedUserID *uint
	RelatedPostID *uint
}

// NotificationService records and serves pulled notifications.
// Recording is best effort: a failed insert never fails the action that triggered it.
type NotificationService struct {
	db            *gorm.DB
	notifications repositories.NotificationRepository
	log           *zap.Logger
	dropped       atomic.Int64
}

func NewNotificationService(db *gorm.DB, notifications repositories.NotificationRepository, log *zap.Logger) *NotificationService {
	return &NotificationService{
		db:            db,
		notifications: notifications,
		log:           log.Named("notifications"),
	}
}

// Notify records a notification inside tx using a savepoint.
// On failure only the savepoint is rolled back; the caller's transaction stays usable.
// A nil tx records the notification on its own.
func (s *NotificationService) Notify(ctx context.Context, tx *gorm.DB, in NotifyInput) *models.Notification {
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}
	n := &models.Notification{
		UserID:        in.RecipientID,
		Type:          in.Type,
		Message:       in.Message,
		RelatedUserID: in.RelatedUserID,
		RelatedPostID: in.RelatedPostID,
	}
	err := tx.Transaction(func(sp *gorm.DB) error {
		return s.notifications.WithTx(sp).CreateNotification(ctx, n)
	})
	if err != nil {
		s.dropped.Add(1)
		s.log.Warn("notification dropped",
			zap.Uint("recipient_id", in.RecipientID),
			zap.String("type", string(in.Type)),
			zap.Error(err))
		return nil
	}
	return n
}

// Dropped returns how many notifications failed to record since startup
func (s *NotificationService) Dropped() int64 {
	return s.dropped.Load()
}

// ListFor returns the user's most recent notifications, newest first
func (s *NotificationService) ListFor(ctx context.Context, user *models.User, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > MaxNotifications {
		limit = MaxNotifications
	}
	list, err := s.notifications.GetByRecipientID(ctx, user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

// MarkRead marks one of the actor's notifications as read. Marking twice is harmless.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.User, notificationID uint) error {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return notFound(err, "notification")
	}
	if n.UserID != actor.ID {
		return ErrForbidden
	}
	if n.IsRead {
		return nil
	}
	return s.notifications.MarkAsRead(ctx, notificationID)
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, user *models.User) (int64, error) {
	return s.notifications.MarkAllAsRead(ctx, user.ID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, user *models.User) (int64, error) {
	return s.notifications.GetUnreadCount(ctx, user.ID)
}

func signupMessage(newcomer *models.User) string {
	return fmt.Sprintf("%s is waiting for signup approval", newcomer.DisplayName)
}

func approvalMessage() string {
	return "An administrator approved your account. Welcome to the team feed!"
}

func postLikeMessage(actor *models.User) string {
	return fmt.Sprintf("%s liked your post", actor.DisplayName)
}

func commentLikeMessage(actor *models.User) string {
	return fmt.Sprintf("%s liked your comment", actor.DisplayName)
}

func commentMessage(actor *models.User) string {
	return fmt.Sprintf("%s commented on your post", actor.DisplayName)
}

func uintPtr(v uint) *uint {
	return &v
}
