package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestListForLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range names(25, "user") {
		env.register(t, name)
	}

	list, err := env.svc.Notifications.ListFor(ctx, env.admin, 0)
	require.NoError(t, err)
	assert.Len(t, list, MaxNotifications)
	assert.Equal(t, "User user24 is waiting for signup approval", list[0].Message)

	list, err = env.svc.Notifications.ListFor(ctx, env.admin, 5)
	require.NoError(t, err)
	assert.Len(t, list, 5)

	list, err = env.svc.Notifications.ListFor(ctx, env.admin, 500)
	require.NoError(t, err)
	assert.Len(t, list, MaxNotifications)
}

func TestMarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	bob := env.member(t, "bob")

	list, err := env.svc.Notifications.ListFor(ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	assert.ErrorIs(t, env.svc.Notifications.MarkRead(ctx, bob, id), ErrForbidden)
	assert.ErrorIs(t, env.svc.Notifications.MarkRead(ctx, alice, 9999), ErrNotFound)

	require.NoError(t, env.svc.Notifications.MarkRead(ctx, alice, id))
	assert.Zero(t, env.unread(t, alice))
	require.NoError(t, env.svc.Notifications.MarkRead(ctx, alice, id))
}

func TestMarkAllRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")
	env.register(t, "bob")
	require.Equal(t, int64(2), env.unread(t, env.admin))

	n, err := env.svc.Notifications.MarkAllRead(ctx, env.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Zero(t, env.unread(t, env.admin))
}

// brokenNotifications fails every insert
type brokenNotifications struct {
	repositories.NotificationRepository
}

func (b brokenNotifications) WithTx(tx *gorm.DB) repositories.NotificationRepository {
	return brokenNotifications{b.NotificationRepository.WithTx(tx)}
}

func (b brokenNotifications) CreateNotification(context.Context, *models.Notification) error {
	return errors.New("notification store unavailable")
}

func TestNotificationFailureDoesNotAbortAction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewWithRepositories(
		Deps{DB: db, Hasher: NewBcryptHasher(bcrypt.MinCost)},
		repositories.NewPostgresUserRepository(db),
		repositories.NewPostgresPostRepository(db),
		repositories.NewPostgresCommentRepository(db),
		repositories.NewPostgresLikeRepository(db),
		repositories.NewPostgresCommentLikeRepository(db),
		brokenNotifications{repositories.NewPostgresNotificationRepository(db)},
	)

	admin, _, err := svc.Identity.EnsureAdmin(ctx, AdminBootstrap{Username: "admin", Email: "admin@teamsns.com", Password: "admin123"})
	require.NoError(t, err)

	alice, err := svc.Identity.Register(ctx, models.SignupRequest{Username: "alice", Email: "alice@example.com", DisplayName: "Alice", Password: "secret1"})
	require.NoError(t, err)
	alice, err = svc.Moderation.Approve(ctx, admin, alice.ID)
	require.NoError(t, err)
	require.True(t, alice.IsApproved)

	post, err := svc.Content.CreatePost(ctx, alice, models.CreatePostRequest{Content: "hi", Category: "daily"}, nil)
	require.NoError(t, err)
	res, err := svc.Reactions.TogglePostLike(ctx, admin, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	// signup, approval and like all committed; their notifications were dropped
	assert.Equal(t, int64(3), svc.Notifications.Dropped())
	var users, likes, notes int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.PostLike{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Notification{}).Count(&notes).Error)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(1), likes)
	assert.Zero(t, notes)

	u, err := svc.Identity.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, u.IsApproved)
}

func TestNotificationSavepointRollsBackOnDatabaseError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")

	err := env.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the recipient does not exist, so the foreign key rejects the insert
		n := env.svc.Notifications.Notify(ctx, tx, NotifyInput{
			RecipientID: 424242,
			Type:        models.NotificationLike,
			Message:     "nobody",
		})
		assert.Nil(t, n)

		ok := env.svc.Notifications.Notify(ctx, tx, NotifyInput{
			RecipientID: alice.ID,
			Type:        models.NotificationLike,
			Message:     "still works",
		})
		assert.NotNil(t, ok)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), env.svc.Notifications.Dropped())
	assert.Equal(t, int64(1), env.count(t, &models.Notification{}, "message = ?", "still works"))
}
