package service

import (
	"context"
	"errors"
	"testing"

	"warble/internal/media"
	"warble/internal/models"
	"warble/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeProvider records release calls and can be told to reject specific ids.
type fakeProvider struct {
	released []string
	failIDs  map[string]bool
}

func (f *fakeProvider) SignUpload(folder string) (*media.SignedUpload, error) {
	return &media.SignedUpload{Folder: folder, Signature: "sig"}, nil
}

func (f *fakeProvider) Release(_ context.Context, publicID, _ string) error {
	if f.failIDs[publicID] {
		return errors.New("provider rejected release")
	}
	f.released = append(f.released, publicID)
	return nil
}

type testEnv struct {
	db       *gorm.DB
	provider *fakeProvider
	posts    *PostService
	users    *UserService
}

func setupService(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Reply{},
		&models.Like{},
		&models.Follow{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	provider := &fakeProvider{failIDs: map[string]bool{}}
	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)

	return &testEnv{
		db:       db,
		provider: provider,
		posts:    NewPostService(postRepo, replyRepo, likeRepo, provider),
		users:    NewUserService(userRepo, followRepo, provider),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		UserID:   uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}
