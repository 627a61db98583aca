package seed

import (
	"testing"

	"warble/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRunSeedsConsistentCounters(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Reply{},
		&models.Like{},
		&models.Follow{},
	))

	require.NoError(t, Run(db, Options{NumUsers: 8, NumPosts: 20}))

	var userCount, postCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Post{}).Count(&postCount)
	assert.EqualValues(t, 8, userCount)
	assert.EqualValues(t, 20, postCount)

	// Every seeded counter must agree with its relation table.
	var posts []*models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, post := range posts {
		var likeCount, replyCount int64
		db.Model(&models.Like{}).Where("post_id = ?", post.PostID).Count(&likeCount)
		db.Model(&models.Reply{}).Where("post_id = ?", post.PostID).Count(&replyCount)
		assert.EqualValues(t, likeCount, post.LikeCount, "post %s like counter drifted", post.PostID)
		assert.EqualValues(t, replyCount, post.ReplyCount, "post %s reply counter drifted", post.PostID)
	}
}

func TestRunCleanRemovesExistingRows(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Reply{},
		&models.Like{},
		&models.Follow{},
	))

	require.NoError(t, Run(db, Options{NumUsers: 3, NumPosts: 5}))
	require.NoError(t, Run(db, Options{NumUsers: 4, NumPosts: 6, ShouldClean: true}))

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.EqualValues(t, 4, userCount)
}
