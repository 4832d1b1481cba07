package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Notification{},
	))
	return db
}

type fakeFiles struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeFiles) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, ref)
	return nil
}

func (f *fakeFiles) Removed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

type testEnv struct {
	db    *gorm.DB
	svc   *Services
	files *fakeFiles
	admin *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	files := &fakeFiles{}
	svc := New(Deps{DB: db, Hasher: NewBcryptHasher(bcrypt.MinCost), Files: files})

	admin, created, err := svc.Identity.EnsureAdmin(context.Background(), AdminBootstrap{
		Username:    "admin",
		Email:       "admin@teamsns.com",
		DisplayName: "Administrator",
		Password:    "admin123",
	})
	require.NoError(t, err)
	require.True(t, created)

	return &testEnv{db: db, svc: svc, files: files, admin: admin}
}

// register creates an unapproved user
func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.svc.Identity.Register(context.Background(), models.SignupRequest{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: "User " + username,
		Password:    "secret1",
	})
	require.NoError(t, err)
	return u
}

// member creates an approved user
func (e *testEnv) member(t *testing.T, username string) *models.User {
	t.Helper()
	u := e.register(t, username)
	approved, err := e.svc.Moderation.Approve(context.Background(), e.admin, u.ID)
	require.NoError(t, err)
	return approved
}

func (e *testEnv) post(t *testing.T, author *models.User, content string, category models.Category) *PostView {
	t.Helper()
	p, err := e.svc.Content.CreatePost(context.Background(), author, models.CreatePostRequest{
		Content:  content,
		Category: string(category),
	}, nil)
	require.NoError(t, err)
	return p
}

func (e *testEnv) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (e *testEnv) unread(t *testing.T, u *models.User) int64 {
	t.Helper()
	n, err := e.svc.Notifications.UnreadCount(context.Background(), u)
	require.NoError(t, err)
	return n
}

func names(n int, prefix string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return out
}
