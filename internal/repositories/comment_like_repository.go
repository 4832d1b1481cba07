package repositories

import (
	"context"

	"github.com/anonto42/team-feed/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentLikeRepository defines the interface for comment like operations
type CommentLikeRepository interface {
	WithTx(tx *gorm.DB) CommentLikeRepository
	InsertCommentLike(ctx context.Context, commentID, userID uint) (bool, error)
	DeleteCommentLike(ctx context.Context, commentID, userID uint) (bool, error)
	GetLikesCount(ctx context.Context, commentID uint) (int64, error)
	CountByComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
	LikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
	DeleteForCascade(ctx context.Context, commentIDs []uint, userID *uint) error
}

type postgresCommentLikeRepository struct {
	db *gorm.DB
}

func NewPostgresCommentLikeRepository(db *gorm.DB) CommentLikeRepository {
	return &postgresCommentLikeRepository{db: db}
}

func (r *postgresCommentLikeRepository) WithTx(tx *gorm.DB) CommentLikeRepository {
	return &postgresCommentLikeRepository{db: tx}
}

func (r *postgresCommentLikeRepository) InsertCommentLike(ctx context.Context, commentID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("User", "Comment").
		Create(&models.CommentLike{UserID: userID, CommentID: commentID})
	return res.RowsAffected > 0, res.Error
}

func (r *postgresCommentLikeRepository) DeleteCommentLike(ctx context.Context, commentID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&models.CommentLike{})
	return res.RowsAffected > 0, res.Error
}

func (r *postgresCommentLikeRepository) GetLikesCount(ctx context.Context, commentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error
	return count, err
}

func (r *postgresCommentLikeRepository) CountByComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Select("comment_id AS id, COUNT(*) AS count").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, err
}

func (r *postgresCommentLikeRepository) LikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(commentIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	for _, id := range ids {
		liked[id] = true
	}
	return liked, err
}

// DeleteForCascade removes likes on the given comments, plus every comment like given by userID when set
func (r *postgresCommentLikeRepository) DeleteForCascade(ctx context.Context, commentIDs []uint, userID *uint) error {
	q := r.db.WithContext(ctx)
	switch {
	case userID != nil && len(commentIDs) > 0:
		q = q.Where("comment_id IN ? OR user_id = ?", commentIDs, *userID)
	case userID != nil:
		q = q.Where("user_id = ?", *userID)
	case len(commentIDs) > 0:
		q = q.Where("comment_id IN ?", commentIDs)
	default:
		return nil
	}
	return q.Delete(&models.CommentLike{}).Error
}
