package repositories

import (
	"context"

	"github.com/anonto42/team-feed/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for post like operations
type LikeRepository interface {
	WithTx(tx *gorm.DB) LikeRepository
	InsertLike(ctx context.Context, postID, userID uint) (bool, error)
	DeleteLike(ctx context.Context, postID, userID uint) (bool, error)
	GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
	DeleteForCascade(ctx context.Context, postIDs []uint, userID *uint) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresLikeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &PostgresLikeRepository{db: tx}
}

// InsertLike adds the (user, post) edge unless it already exists and reports whether a row was inserted
func (r *PostgresLikeRepository) InsertLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("User", "Post").
		Create(&models.PostLike{UserID: userID, PostID: postID})
	return res.RowsAffected > 0, res.Error
}

// DeleteLike removes the (user, post) edge and reports whether one existed
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{})
	return res.RowsAffected > 0, res.Error
}

// GetLikesCountByPostID retrieves the count of likes for a specific post from PostgreSQL
func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPosts returns the number of likes per post
func (r *PostgresLikeRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Select("post_id AS id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, err
}

// LikedPostIDs reports which of the given posts the user has liked
func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(postIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	for _, id := range ids {
		liked[id] = true
	}
	return liked, err
}

// DeleteForCascade removes likes on the given posts, plus every like given by userID when set
func (r *PostgresLikeRepository) DeleteForCascade(ctx context.Context, postIDs []uint, userID *uint) error {
	q := r.db.WithContext(ctx)
	switch {
	case userID != nil && len(postIDs) > 0:
		q = q.Where("post_id IN ? OR user_id = ?", postIDs, *userID)
	case userID != nil:
		q = q.Where("user_id = ?", *userID)
	case len(postIDs) > 0:
		q = q.Where("post_id IN ?", postIDs)
	default:
		return nil
	}
	return q.Delete(&models.PostLike{}).Error
}
