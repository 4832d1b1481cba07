package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/team-feed/backend/internal/models"
	"gorm.io/gorm"
)

// UserStatus filters the admin user listing
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusAll      UserStatus = "all"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FirstAdmin(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	MarkApproved(ctx context.Context, id uint) (bool, error)
	ListNonAdmins(ctx context.Context, status UserStatus, page Pagination) ([]models.User, int64, error)
	DeleteUser(ctx context.Context, id uint) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresUserRepository) WithTx(tx *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: tx}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by exact username
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by exact email
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *PostgresUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// FirstAdmin returns the administrator with the lowest ID, or nil when there is none
func (r *PostgresUserRepository) FirstAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("is_admin = ?", true).Order("id ASC").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// MarkApproved flips is_approved for an unapproved user and reports whether a row changed
func (r *PostgresUserRepository) MarkApproved(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_approved = ?", id, false).
		Update("is_approved", true)
	return res.RowsAffected > 0, res.Error
}

// ListNonAdmins pages through regular users, newest first
func (r *PostgresUserRepository) ListNonAdmins(ctx context.Context, status UserStatus, page Pagination) ([]models.User, int64, error) {
	page = page.Normalize()
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("is_admin = ?", false)
	switch status {
	case UserStatusPending:
		q = q.Where("is_approved = ?", false)
	case UserStatusApproved:
		q = q.Where("is_approved = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := q.Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.PerPage).
		Find(&users).Error
	return users, total, err
}

// DeleteUser deletes a user by ID from PostgreSQL
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}
