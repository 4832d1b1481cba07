package repositories

import (
	"context"

	"github.com/anonto42/team-feed/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, category *models.Category, page Pagination) ([]models.Post, int64, error)
	ListPostsByUser(ctx context.Context, userID uint, page Pagination) ([]models.Post, int64, error)
	PostIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	ImageRefs(ctx context.Context, ids []uint) ([]string, error)
	DeletePosts(ctx context.Context, ids []uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresPostRepository) WithTx(tx *gorm.DB) PostRepository {
	return &PostgresPostRepository{db: tx}
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("User").Create(post).Error
}

// GetPostByID retrieves a post and its author
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts pages through posts newest first, optionally restricted to one category
func (r *PostgresPostRepository) ListPosts(ctx context.Context, category *models.Category, page Pagination) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	return r.page(q, page)
}

// ListPostsByUser pages through one author's posts newest first
func (r *PostgresPostRepository) ListPostsByUser(ctx context.Context, userID uint, page Pagination) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID)
	return r.page(q, page)
}

func (r *PostgresPostRepository) page(q *gorm.DB, page Pagination) ([]models.Post, int64, error) {
	page = page.Normalize()

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.PerPage).
		Find(&posts).Error
	return posts, total, err
}

// PostIDsByUser returns the IDs of every post written by the user
func (r *PostgresPostRepository) PostIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// ImageRefs returns the stored image references of the given posts
func (r *PostgresPostRepository) ImageRefs(ctx context.Context, ids []uint) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var refs []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id IN ? AND image_filename IS NOT NULL AND image_filename <> ''", ids).
		Pluck("image_filename", &refs).Error
	return refs, err
}

// DeletePosts deletes the given posts. Dependents must already be gone.
func (r *PostgresPostRepository) DeletePosts(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Post{}).Error
}
