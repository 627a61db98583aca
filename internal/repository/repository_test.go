package repository

import (
	"testing"
	"time"

	"warble/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// _foreign_keys=on makes sqlite enforce the same constraints postgres does.
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

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		UserID:      uuid.NewString(),
		Username:    username,
		DisplayName: "The " + username,
		Email:       username + "@example.com",
		Password:    "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, owner *models.User, text string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		PostID:    uuid.NewString(),
		UserID:    owner.UserID,
		CreatedAt: createdAt,
		PostText:  &text,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}
