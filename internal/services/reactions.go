package services

import (
	"context"
	"fmt"

	"github.com/anonto42/team-feed/backend/internal/models"
	"gorm.io/gorm"
)

// ToggleResult is the like state after a toggle
type ToggleResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// ReactionService flips like edges between users and posts or comments
type ReactionService struct {
	db       *gorm.DB
	store    cascade
	notifier *NotificationService
}

// TogglePostLike flips the (user, post) like edge atomically and returns the live count.
// Only the call that actually inserted the edge notifies the author, and never for a self-like.
func (s *ReactionService) TogglePostLike(ctx context.Context, user *models.User, postID uint) (*ToggleResult, error) {
	if err := RequireApproved(user); err != nil {
		return nil, err
	}

	var result ToggleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.withTx(tx)
		post, err := store.posts.GetPostByID(ctx, postID)
		if err != nil {
			return notFound(err, "post")
		}

		removed, err := store.likes.DeleteLike(ctx, post.ID, user.ID)
		if err != nil {
			return fmt.Errorf("remove like: %w", err)
		}
		if !removed {
			inserted, err := store.likes.InsertLike(ctx, post.ID, user.ID)
			if err != nil {
				return fmt.Errorf("add like: %w", err)
			}
			result.Liked = true
			if inserted && post.UserID != user.ID {
				s.notifier.Notify(ctx, tx, NotifyInput{
					RecipientID:   post.UserID,
					Type:          models.NotificationLike,
					Message:       postLikeMessage(user),
					RelatedUserID: uintPtr(user.ID),
					RelatedPostID: uintPtr(post.ID),
				})
			}
		}

		result.LikesCount, err = store.likes.GetLikesCountByPostID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ToggleCommentLike is TogglePostLike for comments. The notification points at the comment's post.
func (s *ReactionService) ToggleCommentLike(ctx context.Context, user *models.User, commentID uint) (*ToggleResult, error) {
	if err := RequireApproved(user); err != nil {
		return nil, err
	}

	var result ToggleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.withTx(tx)
		comment, err := store.comments.GetCommentByID(ctx, commentID)
		if err != nil {
			return notFound(err, "comment")
		}

		removed, err := store.commentLikes.DeleteCommentLike(ctx, comment.ID, user.ID)
		if err != nil {
			return fmt.Errorf("remove comment like: %w", err)
		}
		if !removed {
			inserted, err := store.commentLikes.InsertCommentLike(ctx, comment.ID, user.ID)
			if err != nil {
				return fmt.Errorf("add comment like: %w", err)
			}
			result.Liked = true
			if inserted && comment.UserID != user.ID {
				s.notifier.Notify(ctx, tx, NotifyInput{
					RecipientID:   comment.UserID,
					Type:          models.NotificationLike,
					Message:       commentLikeMessage(user),
					RelatedUserID: uintPtr(user.ID),
					RelatedPostID: uintPtr(comment.PostID),
				})
			}
		}

		result.LikesCount, err = store.commentLikes.GetLikesCount(ctx, comment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
