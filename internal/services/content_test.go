package services

import (
	"context"
	"strings"
	"testing"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	pending := env.register(t, "pending")

	_, err := env.svc.Content.CreatePost(ctx, pending, models.CreatePostRequest{Content: "hi", Category: "daily"}, nil)
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = env.svc.Content.CreatePost(ctx, alice, models.CreatePostRequest{Content: "hi", Category: "cooking"}, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.svc.Content.CreatePost(ctx, alice, models.CreatePostRequest{Content: "   ", Category: "daily"}, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.svc.Content.CreatePost(ctx, alice, models.CreatePostRequest{Content: strings.Repeat("x", 2001), Category: "daily"}, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	img := "post_1.png"
	p, err := env.svc.Content.CreatePost(ctx, alice, models.CreatePostRequest{Content: "hello team", Category: "notice"}, &img)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, models.CategoryNotice, p.Category)
	require.NotNil(t, p.ImageFilename)
	assert.Equal(t, "post_1.png", *p.ImageFilename)
	assert.Equal(t, alice.ID, p.Author.ID)

	// administrators bypass the approval gate
	_, err = env.svc.Content.CreatePost(ctx, env.admin, models.CreatePostRequest{Content: "welcome", Category: "notice"}, nil)
	assert.NoError(t, err)
}

func TestFeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")

	var ids []uint
	for i := 0; i < 12; i++ {
		category := models.CategoryDaily
		if i%3 == 0 {
			category = models.CategoryGame
		}
		ids = append(ids, env.post(t, alice, "post", category).ID)
	}

	page, err := env.svc.Content.Feed(ctx, alice, FeedQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	require.Len(t, page.Items, FeedPageSize)
	assert.Equal(t, ids[11], page.Items[0].ID, "newest first")
	assert.Equal(t, 2, page.Pages)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)

	page, err = env.svc.Content.Feed(ctx, alice, FeedQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[0], page.Items[1].ID)

	page, err = env.svc.Content.Feed(ctx, alice, FeedQuery{Category: "game"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	for _, p := range page.Items {
		assert.Equal(t, models.CategoryGame, p.Category)
	}

	page, err = env.svc.Content.Feed(ctx, alice, FeedQuery{Category: "movie"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)

	_, err = env.svc.Content.Feed(ctx, alice, FeedQuery{Category: "cooking"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestFeedCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	bob := env.member(t, "bob")
	p := env.post(t, alice, "count me", models.CategoryDaily)

	_, err := env.svc.Reactions.TogglePostLike(ctx, bob, p.ID)
	require.NoError(t, err)
	_, err = env.svc.Content.CreateComment(ctx, bob, p.ID, models.CreateCommentRequest{Content: "one"})
	require.NoError(t, err)
	_, err = env.svc.Content.CreateComment(ctx, alice, p.ID, models.CreateCommentRequest{Content: "two"})
	require.NoError(t, err)

	page, err := env.svc.Content.Feed(ctx, bob, FeedQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].LikesCount)
	assert.Equal(t, int64(2), page.Items[0].CommentsCount)
	assert.True(t, page.Items[0].LikedByMe)
	assert.Equal(t, "alice", page.Items[0].Author.Username)

	page, err = env.svc.Content.Feed(ctx, alice, FeedQuery{})
	require.NoError(t, err)
	assert.False(t, page.Items[0].LikedByMe)
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	bob := env.member(t, "bob")
	p := env.post(t, alice, "details", models.CategoryMovie)

	first, err := env.svc.Content.CreateComment(ctx, bob, p.ID, models.CreateCommentRequest{Content: "first"})
	require.NoError(t, err)
	_, err = env.svc.Content.CreateComment(ctx, alice, p.ID, models.CreateCommentRequest{Content: "second"})
	require.NoError(t, err)
	_, err = env.svc.Reactions.ToggleCommentLike(ctx, alice, first.ID)
	require.NoError(t, err)

	view, err := env.svc.Content.GetPost(ctx, alice, p.ID)
	require.NoError(t, err)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, "first", view.Comments[0].Content)
	assert.Equal(t, int64(1), view.Comments[0].LikesCount)
	assert.True(t, view.Comments[0].LikedByMe)
	assert.Equal(t, "bob", view.Comments[0].Author.Username)

	_, err = env.svc.Content.GetPost(ctx, alice, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	bob := env.member(t, "bob")
	env.post(t, alice, "a1", models.CategoryDaily)
	env.post(t, bob, "b1", models.CategoryDaily)
	env.post(t, alice, "a2", models.CategoryDaily)

	page, err := env.svc.Content.UserPosts(ctx, bob, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a2", page.Items[0].Content)
}

func TestDeletePostCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	bob := env.member(t, "bob")

	img := "post_7.png"
	p, err := env.svc.Content.CreatePost(ctx, alice, models.CreatePostRequest{Content: "bye", Category: "daily"}, &img)
	require.NoError(t, err)
	keep := env.post(t, alice, "stays", models.CategoryDaily)

	c, err := env.svc.Content.CreateComment(ctx, bob, p.ID, models.CreateCommentRequest{Content: "c"})
	require.NoError(t, err)
	_, err = env.svc.Reactions.ToggleCommentLike(ctx, alice, c.ID)
	require.NoError(t, err)
	_, err = env.svc.Reactions.TogglePostLike(ctx, bob, p.ID)
	require.NoError(t, err)
	_, err = env.svc.Reactions.TogglePostLike(ctx, bob, keep.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.Content.DeletePost(ctx, bob, p.ID), ErrForbidden)
	require.NoError(t, env.svc.Content.DeletePost(ctx, alice, p.ID))

	assert.Zero(t, env.count(t, &models.Post{}, "id = ?", p.ID))
	assert.Zero(t, env.count(t, &models.Comment{}, "post_id = ?", p.ID))
	assert.Zero(t, env.count(t, &models.CommentLike{}, "comment_id = ?", c.ID))
	assert.Zero(t, env.count(t, &models.PostLike{}, "post_id = ?", p.ID))
	assert.Zero(t, env.count(t, &models.Notification{}, "related_post_id = ?", p.ID))
	assert.Equal(t, int64(1), env.count(t, &models.PostLike{}, "post_id = ?", keep.ID))
	assert.Equal(t, []string{"post_7.png"}, env.files.Removed())

	assert.ErrorIs(t, env.svc.Content.DeletePost(ctx, alice, p.ID), ErrNotFound)
}

func TestAdminDeletesAnyPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	p := env.post(t, alice, "moderated", models.CategoryDaily)

	require.NoError(t, env.svc.Content.DeletePost(ctx, env.admin, p.ID))
	assert.Zero(t, env.count(t, &models.Post{}, ""))
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	bob := env.member(t, "bob")
	pending := env.register(t, "pending")
	p := env.post(t, alice, "talk", models.CategoryDaily)
	before := env.unread(t, alice)

	_, err := env.svc.Content.CreateComment(ctx, pending, p.ID, models.CreateCommentRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = env.svc.Content.CreateComment(ctx, bob, 9999, models.CreateCommentRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Content.CreateComment(ctx, bob, p.ID, models.CreateCommentRequest{Content: strings.Repeat("x", 501)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	// self comments are silent
	_, err = env.svc.Content.CreateComment(ctx, alice, p.ID, models.CreateCommentRequest{Content: "mine"})
	require.NoError(t, err)
	assert.Equal(t, before, env.unread(t, alice))

	c, err := env.svc.Content.CreateComment(ctx, bob, p.ID, models.CreateCommentRequest{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, before+1, env.unread(t, alice))

	list, err := env.svc.Notifications.ListFor(ctx, alice, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationComment, list[0].Type)
	assert.Equal(t, "User bob commented on your post", list[0].Message)

	_, err = env.svc.Reactions.ToggleCommentLike(ctx, alice, c.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.Content.DeleteComment(ctx, alice, c.ID), ErrForbidden)
	require.NoError(t, env.svc.Content.DeleteComment(ctx, bob, c.ID))
	assert.Zero(t, env.count(t, &models.Comment{}, "id = ?", c.ID))
	assert.Zero(t, env.count(t, &models.CommentLike{}, "comment_id = ?", c.ID))
	assert.ErrorIs(t, env.svc.Content.DeleteComment(ctx, bob, c.ID), ErrNotFound)
}
