package repositories

import (
	"context"

	"github.com/anonto42/team-feed/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	CommentIDsForCascade(ctx context.Context, postIDs []uint, userID *uint) ([]uint, error)
	DeleteComments(ctx context.Context, ids []uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresCommentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &PostgresCommentRepository{db: tx}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User", "Post").Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments for a post, oldest first
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

type countRow struct {
	ID    uint
	Count int64
}

// CountByPosts returns the number of comments per post
func (r *PostgresCommentRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id AS id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, err
}

// CommentIDsForCascade returns comments on the given posts, plus those written by userID when set
func (r *PostgresCommentRepository) CommentIDsForCascade(ctx context.Context, postIDs []uint, userID *uint) ([]uint, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{})
	switch {
	case userID != nil && len(postIDs) > 0:
		q = q.Where("post_id IN ? OR user_id = ?", postIDs, *userID)
	case userID != nil:
		q = q.Where("user_id = ?", *userID)
	case len(postIDs) > 0:
		q = q.Where("post_id IN ?", postIDs)
	default:
		return nil, nil
	}
	var ids []uint
	err := q.Pluck("id", &ids).Error
	return ids, err
}

// DeleteComments deletes the given comments. Their like edges must already be gone.
func (r *PostgresCommentRepository) DeleteComments(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Comment{}).Error
}
