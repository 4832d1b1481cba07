package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FeedPageSize is fixed; clients only choose the page number
const FeedPageSize = 10

// FeedQuery selects one page of the feed. An empty Category means every category.
type FeedQuery struct {
	Category string
	Page     int
}

// ContentService owns posts and comments
type ContentService struct {
	db       *gorm.DB
	store    cascade
	notifier *NotificationService
	files    FileRemover
	validate *validator.Validate
	log      *zap.Logger
}

// CreatePost publishes a post for an approved author. imageRef is the stored file reference, if any.
func (s *ContentService) CreatePost(ctx context.Context, author *models.User, req models.CreatePostRequest, imageRef *string) (*PostView, error) {
	if err := RequireApproved(author); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return nil, validationError("%v", err)
	}
	if imageRef != nil && *imageRef == "" {
		imageRef = nil
	}

	post := &models.Post{
		Content:       req.Content,
		Category:      category,
		ImageFilename: imageRef,
		UserID:        author.ID,
	}
	if err := s.store.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.User = author

	s.log.Debug("post created", zap.Uint("post_id", post.ID), zap.Uint("user_id", author.ID))
	return &PostView{Post: *post, Author: author.ToCompact()}, nil
}

// DeletePost removes a post with its comments, likes and notifications. Owner or admin only.
func (s *ContentService) DeletePost(ctx context.Context, actor *models.User, postID uint) error {
	var refs []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.withTx(tx)
		post, err := store.posts.GetPostByID(ctx, postID)
		if err != nil {
			return notFound(err, "post")
		}
		if err := CanModify(actor, post.UserID); err != nil {
			return err
		}
		refs, err = store.deletePosts(ctx, []uint{post.ID})
		return err
	})
	if err != nil {
		return err
	}

	removeFiles(ctx, s.files, s.log, refs)
	s.log.Info("post deleted", zap.Uint("post_id", postID), zap.Uint("actor_id", actor.ID))
	return nil
}

// CreateComment adds a comment and tells the post author, unless they wrote it
func (s *ContentService) CreateComment(ctx context.Context, author *models.User, postID uint, req models.CreateCommentRequest) (*CommentView, error) {
	if err := RequireApproved(author); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: req.Content, UserID: author.ID, PostID: postID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.withTx(tx)
		post, err := store.posts.GetPostByID(ctx, postID)
		if err != nil {
			return notFound(err, "post")
		}
		if err := store.comments.CreateComment(ctx, comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		if post.UserID != author.ID {
			s.notifier.Notify(ctx, tx, NotifyInput{
				RecipientID:   post.UserID,
				Type:          models.NotificationComment,
				Message:       commentMessage(author),
				RelatedUserID: uintPtr(author.ID),
				RelatedPostID: uintPtr(post.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	comment.User = author
	return &CommentView{Comment: *comment, Author: author.ToCompact()}, nil
}

// DeleteComment removes a comment and its likes. Owner or admin only.
func (s *ContentService) DeleteComment(ctx context.Context, actor *models.User, commentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.withTx(tx)
		comment, err := store.comments.GetCommentByID(ctx, commentID)
		if err != nil {
			return notFound(err, "comment")
		}
		if err := CanModify(actor, comment.UserID); err != nil {
			return err
		}
		return store.deleteComments(ctx, []uint{comment.ID})
	})
}

// Feed returns one page of posts, newest first, optionally filtered by category
func (s *ContentService) Feed(ctx context.Context, viewer *models.User, q FeedQuery) (*Page[PostView], error) {
	var category *models.Category
	if q.Category != "" {
		c, err := models.ParseCategory(q.Category)
		if err != nil {
			return nil, validationError("%v", err)
		}
		category = &c
	}

	p := repositories.Pagination{Page: q.Page, PerPage: FeedPageSize}.Normalize()
	posts, total, err := s.store.posts.ListPosts(ctx, category, p)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	views, err := s.store.postViews(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	return newPage(views, p, total), nil
}

// UserPosts returns one page of a single author's posts
func (s *ContentService) UserPosts(ctx context.Context, viewer *models.User, userID uint, page int) (*Page[PostView], error) {
	p := repositories.Pagination{Page: page, PerPage: FeedPageSize}.Normalize()
	posts, total, err := s.store.posts.ListPostsByUser(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	views, err := s.store.postViews(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	return newPage(views, p, total), nil
}

// GetPost returns a single post with its comments in posting order
func (s *ContentService) GetPost(ctx context.Context, viewer *models.User, postID uint) (*PostView, error) {
	post, err := s.store.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post")
	}
	views, err := s.store.postViews(ctx, viewer, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	view := views[0]

	comments, err := s.store.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if view.Comments, err = s.store.commentViews(ctx, viewer, comments); err != nil {
		return nil, err
	}
	return &view, nil
}
