package services

import (
	"github.com/anonto42/team-feed/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators shared by every service
type Deps struct {
	DB     *gorm.DB
	Hasher PasswordHasher
	Files  FileRemover // optional
	Log    *zap.Logger
}

// Services bundles the five core components over one transactional store
type Services struct {
	Identity      *IdentityService
	Content       *ContentService
	Reactions     *ReactionService
	Notifications *NotificationService
	Moderation    *ModerationService
}

// New wires the services onto the gorm-backed repositories
func New(d Deps) *Services {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	repos := cascade{
		users:         repositories.NewPostgresUserRepository(d.DB),
		posts:         repositories.NewPostgresPostRepository(d.DB),
		comments:      repositories.NewPostgresCommentRepository(d.DB),
		likes:         repositories.NewPostgresLikeRepository(d.DB),
		commentLikes:  repositories.NewPostgresCommentLikeRepository(d.DB),
		notifications: repositories.NewPostgresNotificationRepository(d.DB),
	}
	return NewWithRepositories(d, repos.users, repos.posts, repos.comments, repos.likes, repos.commentLikes, repos.notifications)
}

// NewWithRepositories wires the services onto caller-supplied repositories
func NewWithRepositories(
	d Deps,
	users repositories.UserRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	likes repositories.LikeRepository,
	commentLikes repositories.CommentLikeRepository,
	notifications repositories.NotificationRepository,
) *Services {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	c := cascade{
		users:         users,
		posts:         posts,
		comments:      comments,
		likes:         likes,
		commentLikes:  commentLikes,
		notifications: notifications,
	}
	validate := validator.New()
	notifier := NewNotificationService(d.DB, notifications, d.Log)

	return &Services{
		Identity: &IdentityService{
			db:       d.DB,
			users:    users,
			hasher:   d.Hasher,
			notifier: notifier,
			files:    d.Files,
			validate: validate,
			log:      d.Log.Named("identity"),
		},
		Content: &ContentService{
			db:       d.DB,
			store:    c,
			notifier: notifier,
			files:    d.Files,
			validate: validate,
			log:      d.Log.Named("content"),
		},
		Reactions: &ReactionService{
			db:       d.DB,
			store:    c,
			notifier: notifier,
		},
		Notifications: notifier,
		Moderation: &ModerationService{
			db:       d.DB,
			store:    c,
			notifier: notifier,
			files:    d.Files,
			log:      d.Log.Named("moderation"),
		},
	}
}
