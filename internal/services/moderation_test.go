package services

import (
	"context"
	"testing"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveNotifiesTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	u, err := env.svc.Moderation.Approve(ctx, env.admin, alice.ID)
	require.NoError(t, err)
	assert.True(t, u.IsApproved)

	list, err := env.svc.Notifications.ListFor(ctx, alice, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationApproval, list[0].Type)
	assert.False(t, list[0].IsRead)
	assert.Equal(t, int64(1), env.unread(t, alice))

	// a second approval is a no-op
	_, err = env.svc.Moderation.Approve(ctx, env.admin, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.unread(t, alice))
}

func TestApproveRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.member(t, "bob")
	carol := env.register(t, "carol")

	_, err := env.svc.Moderation.Approve(ctx, bob, carol.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Moderation.Approve(ctx, env.admin, env.admin.ID)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = env.svc.Moderation.Approve(ctx, env.admin, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.member(t, "alice")
	bob := env.member(t, "bob")

	img := "post_alice.png"
	alicePost, err := env.svc.Content.CreatePost(ctx, alice, models.CreatePostRequest{Content: "hi", Category: "daily"}, &img)
	require.NoError(t, err)
	bobPost := env.post(t, bob, "bob's post", models.CategoryGame)

	// alice interacts with bob, bob interacts with alice
	aliceComment, err := env.svc.Content.CreateComment(ctx, alice, bobPost.ID, models.CreateCommentRequest{Content: "nice"})
	require.NoError(t, err)
	bobComment, err := env.svc.Content.CreateComment(ctx, bob, alicePost.ID, models.CreateCommentRequest{Content: "thanks"})
	require.NoError(t, err)
	_, err = env.svc.Reactions.TogglePostLike(ctx, alice, bobPost.ID)
	require.NoError(t, err)
	_, err = env.svc.Reactions.TogglePostLike(ctx, bob, alicePost.ID)
	require.NoError(t, err)
	_, err = env.svc.Reactions.ToggleCommentLike(ctx, bob, aliceComment.ID)
	require.NoError(t, err)
	_, err = env.svc.Reactions.ToggleCommentLike(ctx, alice, bobComment.ID)
	require.NoError(t, err)
	_, err = env.svc.Identity.SetProfileImage(ctx, alice, "profile_alice.png")
	require.NoError(t, err)

	require.NoError(t, env.svc.Moderation.Reject(ctx, env.admin, alice.ID))

	_, err = env.svc.Identity.Authenticate(ctx, "alice", "secret1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, env.count(t, &models.Post{}, "user_id = ?", alice.ID))
	assert.Zero(t, env.count(t, &models.Comment{}, "user_id = ? OR post_id = ?", alice.ID, alicePost.ID))
	assert.Zero(t, env.count(t, &models.PostLike{}, "user_id = ? OR post_id = ?", alice.ID, alicePost.ID))
	assert.Zero(t, env.count(t, &models.CommentLike{}, ""))
	assert.Zero(t, env.count(t, &models.Notification{}, "user_id = ? OR related_user_id = ? OR related_post_id = ?", alice.ID, alice.ID, alicePost.ID))

	// bob's own post survives without alice's like or comment
	assert.Equal(t, int64(1), env.count(t, &models.Post{}, "id = ?", bobPost.ID))
	view, err := env.svc.Content.GetPost(ctx, bob, bobPost.ID)
	require.NoError(t, err)
	assert.Zero(t, view.LikesCount)
	assert.Empty(t, view.Comments)

	assert.ElementsMatch(t, []string{"post_alice.png", "profile_alice.png"}, env.files.Removed())
}

func TestRejectRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.member(t, "bob")
	carol := env.register(t, "carol")

	assert.ErrorIs(t, env.svc.Moderation.Reject(ctx, bob, carol.ID), ErrForbidden)
	assert.ErrorIs(t, env.svc.Moderation.Reject(ctx, env.admin, env.admin.ID), ErrInvalidTarget)
	assert.ErrorIs(t, env.svc.Moderation.Reject(ctx, env.admin, 9999), ErrNotFound)
}

func TestRequireApproved(t *testing.T) {
	assert.ErrorIs(t, RequireApproved(&models.User{}), ErrNotApproved)
	assert.NoError(t, RequireApproved(&models.User{IsApproved: true}))
	assert.NoError(t, RequireApproved(&models.User{IsAdmin: true}))
}

func TestCanModify(t *testing.T) {
	owner := &models.User{ID: 1, IsApproved: true}
	other := &models.User{ID: 2, IsApproved: true}
	admin := &models.User{ID: 3, IsAdmin: true}

	assert.NoError(t, CanModify(owner, 1))
	assert.NoError(t, CanModify(admin, 1))
	assert.ErrorIs(t, CanModify(other, 1), ErrForbidden)
	assert.ErrorIs(t, CanModify(nil, 1), ErrForbidden)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range names(12, "pending") {
		env.register(t, name)
	}
	env.member(t, "alice")
	env.member(t, "bob")

	page, err := env.svc.Moderation.ListUsers(ctx, env.admin, UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasNext)
	assert.Equal(t, 2, page.Pages)

	page, err = env.svc.Moderation.ListUsers(ctx, env.admin, UserFilter{Status: repositories.UserStatusPending, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)

	page, err = env.svc.Moderation.ListUsers(ctx, env.admin, UserFilter{Status: repositories.UserStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = env.svc.Moderation.ListUsers(ctx, env.admin, UserFilter{Status: repositories.UserStatusAll})
	require.NoError(t, err)
	assert.Equal(t, int64(14), page.Total, "administrators are never listed")

	_, err = env.svc.Moderation.ListUsers(ctx, env.admin, UserFilter{Status: "banned"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	bob, err := env.svc.Identity.Authenticate(ctx, "bob", "secret1")
	require.NoError(t, err)
	_, err = env.svc.Moderation.ListUsers(ctx, bob, UserFilter{})
	assert.ErrorIs(t, err, ErrForbidden)
}
