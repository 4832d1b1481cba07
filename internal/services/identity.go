package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminBootstrap is the credential used to create the first administrator
type AdminBootstrap struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
}

// IdentityService owns accounts, credentials and profiles
type IdentityService struct {
	db       *gorm.DB
	users    repositories.UserRepository
	hasher   PasswordHasher
	notifier *NotificationService
	files    FileRemover
	validate *validator.Validate
	log      *zap.Logger
}

// Register creates an unapproved, non-admin account and asks the first administrator to review it
func (s *IdentityService) Register(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		ProfileImage: models.DefaultProfileImage,
	}
	if err := s.SetPassword(user, req.Password); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		if err := checkUnique(ctx, users, user.Username, user.Email); err != nil {
			return err
		}
		if err := users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUsername
			}
			return fmt.Errorf("create user: %w", err)
		}

		admin, err := users.FirstAdmin(ctx)
		if err != nil {
			return fmt.Errorf("find administrator: %w", err)
		}
		if admin != nil {
			s.notifier.Notify(ctx, tx, NotifyInput{
				RecipientID:   admin.ID,
				Type:          models.NotificationApproval,
				Message:       signupMessage(user),
				RelatedUserID: uintPtr(user.ID),
			})
		}
		return nil
	})
	if err != nil {
		// A concurrent signup can win the unique index between the check and the insert
		if errors.Is(err, ErrDuplicateUsername) {
			return nil, s.classifyDuplicate(ctx, user)
		}
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func checkUnique(ctx context.Context, users repositories.UserRepository, username, email string) error {
	taken, err := users.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return ErrDuplicateUsername
	}
	taken, err = users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrDuplicateEmail
	}
	return nil
}

func (s *IdentityService) classifyDuplicate(ctx context.Context, user *models.User) error {
	if err := checkUnique(ctx, s.users, user.Username, user.Email); err != nil {
		return err
	}
	return ErrDuplicateUsername
}

// Authenticate checks the credential first, then the approval gate
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !s.CheckPassword(user, password) {
		return nil, ErrBadCredential
	}
	if err := RequireApproved(user); err != nil {
		return nil, err
	}
	return user, nil
}

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// SetPassword stores a fresh salted hash on the user. It does not persist the user.
func (s *IdentityService) SetPassword(user *models.User, plaintext string) error {
	if len(plaintext) > MaxPasswordBytes {
		return validationError("password must be at most %d bytes", MaxPasswordBytes)
	}
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash
func (s *IdentityService) CheckPassword(user *models.User, plaintext string) bool {
	ok, err := s.hasher.Verify(user.PasswordHash, plaintext)
	if err != nil {
		s.log.Debug("password verification failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return false
	}
	return ok
}

// EnsureAdmin creates the bootstrap administrator when no user holds its username.
// It reports whether a new account was created and is safe to run on every start.
func (s *IdentityService) EnsureAdmin(ctx context.Context, in AdminBootstrap) (*models.User, bool, error) {
	existing, err := s.users.GetUserByUsername(ctx, in.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("look up administrator: %w", err)
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Username
	}
	admin := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		DisplayName:  displayName,
		ProfileImage: models.DefaultProfileImage,
		IsApproved:   true,
		IsAdmin:      true,
	}
	if err := s.SetPassword(admin, in.Password); err != nil {
		return nil, false, err
	}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("create administrator: %w", err)
	}

	s.log.Info("bootstrap administrator created", zap.Uint("user_id", admin.ID), zap.String("username", admin.Username))
	return admin, true, nil
}

// GetUser loads a user by ID
func (s *IdentityService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// GetUserByEmail loads a user by exact email
func (s *IdentityService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// UpdateProfile changes the actor's display name and bio
func (s *IdentityService) UpdateProfile(ctx context.Context, actor *models.User, req models.UpdateProfileRequest) (*models.User, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	user.DisplayName = req.DisplayName
	user.Bio = req.Bio
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// SetProfileImage points the actor's profile at a newly stored image and removes the old one
func (s *IdentityService) SetProfileImage(ctx context.Context, actor *models.User, ref string) (*models.User, error) {
	if ref == "" {
		return nil, validationError("profile image reference is empty")
	}
	user, err := s.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	previous := user.ProfileImage
	user.ProfileImage = ref
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile image: %w", err)
	}
	if previous != "" && previous != models.DefaultProfileImage && previous != ref {
		removeFiles(ctx, s.files, s.log, []string{previous})
	}
	return user, nil
}

// ChangePassword replaces the actor's password after re-checking the current one
func (s *IdentityService) ChangePassword(ctx context.Context, actor *models.User, req models.ChangePasswordRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	user, err := s.GetUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !s.CheckPassword(user, req.CurrentPassword) {
		return ErrBadCredential
	}
	if err := s.SetPassword(user, req.NewPassword); err != nil {
		return err
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
