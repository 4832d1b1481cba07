package services

import (
	"context"
	"fmt"

	"github.com/anonto42/team-feed/backend/internal/models"
)

// PostView is a post with its author and live reaction counts
type PostView struct {
	models.Post
	Author        models.UserCompact `json:"author"`
	LikesCount    int64              `json:"likes_count"`
	CommentsCount int64              `json:"comments_count"`
	LikedByMe     bool               `json:"liked_by_me"`
	Comments      []CommentView      `json:"comments,omitempty"`
}

// CommentView is a comment with its author and live like count
type CommentView struct {
	models.Comment
	Author     models.UserCompact `json:"author"`
	LikesCount int64              `json:"likes_count"`
	LikedByMe  bool               `json:"liked_by_me"`
}

func authorOf(u *models.User) models.UserCompact {
	if u == nil {
		return models.UserCompact{}
	}
	return u.ToCompact()
}

// postViews decorates posts with counts computed from the edge tables
func (c cascade) postViews(ctx context.Context, viewer *models.User, posts []models.Post) ([]PostView, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likes, err := c.likes.CountByPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	comments, err := c.comments.CountByPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	liked := map[uint]bool{}
	if viewer != nil {
		if liked, err = c.likes.LikedPostIDs(ctx, viewer.ID, ids); err != nil {
			return nil, fmt.Errorf("load liked posts: %w", err)
		}
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{
			Post:          p,
			Author:        authorOf(p.User),
			LikesCount:    likes[p.ID],
			CommentsCount: comments[p.ID],
			LikedByMe:     liked[p.ID],
		}
	}
	return views, nil
}

func (c cascade) commentViews(ctx context.Context, viewer *models.User, comments []models.Comment) ([]CommentView, error) {
	ids := make([]uint, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
	}

	likes, err := c.commentLikes.CountByComments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count comment likes: %w", err)
	}
	liked := map[uint]bool{}
	if viewer != nil {
		if liked, err = c.commentLikes.LikedCommentIDs(ctx, viewer.ID, ids); err != nil {
			return nil, fmt.Errorf("load liked comments: %w", err)
		}
	}

	views := make([]CommentView, len(comments))
	for i, cm := range comments {
		views[i] = CommentView{
			Comment:    cm,
			Author:     authorOf(cm.User),
			LikesCount: likes[cm.ID],
			LikedByMe:  liked[cm.ID],
		}
	}
	return views, nil
}
