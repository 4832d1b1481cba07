package services

import (
	"context"
	"fmt"

	"github.com/anonto42/team-feed/backend/internal/repositories"
	"gorm.io/gorm"
)

// FileRemover deletes a stored file by reference
type FileRemover interface {
	Delete(ctx context.Context, ref string) error
}

// cascade removes an entity together with every row that depends on it.
// Children go first so the foreign keys hold at every step.
type cascade struct {
	users         repositories.UserRepository
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	commentLikes  repositories.CommentLikeRepository
	notifications repositories.NotificationRepository
}

func (c cascade) withTx(tx *gorm.DB) cascade {
	return cascade{
		users:         c.users.WithTx(tx),
		posts:         c.posts.WithTx(tx),
		comments:      c.comments.WithTx(tx),
		likes:         c.likes.WithTx(tx),
		commentLikes:  c.commentLikes.WithTx(tx),
		notifications: c.notifications.WithTx(tx),
	}
}

// deletePosts removes the posts and their dependents and returns the image references they held
func (c cascade) deletePosts(ctx context.Context, postIDs []uint) ([]string, error) {
	return c.deleteContent(ctx, postIDs, nil)
}

func (c cascade) deleteComments(ctx context.Context, commentIDs []uint) error {
	if err := c.commentLikes.DeleteForCascade(ctx, commentIDs, nil); err != nil {
		return fmt.Errorf("delete comment likes: %w", err)
	}
	if err := c.comments.DeleteComments(ctx, commentIDs); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}

// deleteUser removes the user, their posts, their comments, every like they gave or received,
// and every notification addressed to them or about them or their posts.
// It returns the post image references that were orphaned.
func (c cascade) deleteUser(ctx context.Context, userID uint) ([]string, error) {
	postIDs, err := c.posts.PostIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("collect posts: %w", err)
	}
	refs, err := c.deleteContent(ctx, postIDs, &userID)
	if err != nil {
		return nil, err
	}
	if err := c.users.DeleteUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return refs, nil
}

func (c cascade) deleteContent(ctx context.Context, postIDs []uint, userID *uint) ([]string, error) {
	refs, err := c.posts.ImageRefs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("collect images: %w", err)
	}
	commentIDs, err := c.comments.CommentIDsForCascade(ctx, postIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("collect comments: %w", err)
	}
	if err := c.commentLikes.DeleteForCascade(ctx, commentIDs, userID); err != nil {
		return nil, fmt.Errorf("delete comment likes: %w", err)
	}
	if err := c.comments.DeleteComments(ctx, commentIDs); err != nil {
		return nil, fmt.Errorf("delete comments: %w", err)
	}
	if err := c.likes.DeleteForCascade(ctx, postIDs, userID); err != nil {
		return nil, fmt.Errorf("delete post likes: %w", err)
	}
	if err := c.notifications.DeleteForCascade(ctx, userID, postIDs); err != nil {
		return nil, fmt.Errorf("delete notifications: %w", err)
	}
	if err := c.posts.DeletePosts(ctx, postIDs); err != nil {
		return nil, fmt.Errorf("delete posts: %w", err)
	}
	return refs, nil
}
