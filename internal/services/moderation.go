package services

import (
	"context"
	"fmt"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequireApproved fails with ErrNotApproved unless the user may author content.
// Administrators always pass.
func RequireApproved(user *models.User) error {
	if user == nil {
		return ErrNotFound
	}
	if user.IsAdmin || user.IsApproved {
		return nil
	}
	return ErrNotApproved
}

// RequireAdmin fails with ErrForbidden unless the user is an administrator
func RequireAdmin(user *models.User) error {
	if !user.CanModerate() {
		return ErrForbidden
	}
	return nil
}

// CanModify is the single ownership predicate: the owner or any administrator
func CanModify(actor *models.User, ownerID uint) error {
	if actor == nil {
		return ErrForbidden
	}
	if actor.ID == ownerID || actor.IsAdmin {
		return nil
	}
	return ErrForbidden
}

// UserFilter selects which users the moderation listing shows
type UserFilter struct {
	Status repositories.UserStatus
	Page   int
}

// ModerationService drives the unapproved -> approved / deleted lifecycle
type ModerationService struct {
	db       *gorm.DB
	store    cascade
	notifier *NotificationService
	files    FileRemover
	log      *zap.Logger
}

// RequireApproved is the gate every content-creating action passes through
func (s *ModerationService) RequireApproved(user *models.User) error {
	return RequireApproved(user)
}

// Approve moves an unapproved user to approved and notifies them.
// Approving an already approved user changes nothing and sends nothing.
func (s *ModerationService) Approve(ctx context.Context, admin *models.User, targetID uint) (*models.User, error) {
	if err := RequireAdmin(admin); err != nil {
		return nil, err
	}

	var target *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.store.users.WithTx(tx)
		var err error
		target, err = users.GetUserByID(ctx, targetID)
		if err != nil {
			return notFound(err, "user")
		}
		if target.IsAdmin {
			return ErrInvalidTarget
		}
		changed, err := users.MarkApproved(ctx, target.ID)
		if err != nil {
			return fmt.Errorf("approve user: %w", err)
		}
		target.IsApproved = true
		if changed {
			s.notifier.Notify(ctx, tx, NotifyInput{
				RecipientID:   target.ID,
				Type:          models.NotificationApproval,
				Message:       approvalMessage(),
				RelatedUserID: uintPtr(admin.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user approved", zap.Uint("user_id", target.ID), zap.Uint("admin_id", admin.ID))
	return target, nil
}

// Reject deletes a non-admin user together with everything they authored or received
func (s *ModerationService) Reject(ctx context.Context, admin *models.User, targetID uint) error {
	if err := RequireAdmin(admin); err != nil {
		return err
	}

	var (
		target *models.User
		refs   []string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.withTx(tx)
		var err error
		target, err = store.users.GetUserByID(ctx, targetID)
		if err != nil {
			return notFound(err, "user")
		}
		if target.IsAdmin {
			return ErrInvalidTarget
		}
		refs, err = store.deleteUser(ctx, target.ID)
		return err
	})
	if err != nil {
		return err
	}

	if target.ProfileImage != "" && target.ProfileImage != models.DefaultProfileImage {
		refs = append(refs, target.ProfileImage)
	}
	removeFiles(ctx, s.files, s.log, refs)
	s.log.Info("user rejected", zap.Uint("user_id", target.ID), zap.Uint("admin_id", admin.ID))
	return nil
}

// ListUsers pages through non-admin users for the moderation panel
func (s *ModerationService) ListUsers(ctx context.Context, admin *models.User, filter UserFilter) (*Page[models.User], error) {
	if err := RequireAdmin(admin); err != nil {
		return nil, err
	}
	switch filter.Status {
	case repositories.UserStatusPending, repositories.UserStatusApproved, repositories.UserStatusAll:
	case "":
		filter.Status = repositories.UserStatusPending
	default:
		return nil, validationError("unknown user filter %q", filter.Status)
	}

	p := repositories.Pagination{Page: filter.Page, PerPage: repositories.DefaultPerPage}.Normalize()
	users, total, err := s.store.users.ListNonAdmins(ctx, filter.Status, p)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return newPage(users, p, total), nil
}

// removeFiles deletes stored files after their rows are gone. Failures only leave orphans behind.
func removeFiles(ctx context.Context, files FileRemover, log *zap.Logger, refs []string) {
	if files == nil {
		return
	}
	for _, ref := range refs {
		if err := files.Delete(ctx, ref); err != nil {
			log.Warn("failed to remove stored file", zap.String("ref", ref), zap.Error(err))
		}
	}
}
