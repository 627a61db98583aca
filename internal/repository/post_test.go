package repository

import (
	"context"
	"testing"
	"time"

	"warble/internal/models"
	"warble/internal/pagination"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateReturnsOwnerProjection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "wren")
	text := "first post"

	created, err := repo.Create(ctx, &models.Post{UserID: owner.UserID, PostText: &text})
	require.NoError(t, err)

	assert.NotEmpty(t, created.PostID)
	assert.Equal(t, "wren", created.Username)
	assert.Equal(t, "The wren", created.DisplayName)
	assert.Equal(t, 0, created.LikeCount)
	assert.Equal(t, 0, created.ReplyCount)
}

func TestPostRepository_CreateForMissingOwnerNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	text := "orphan"
	_, err := repo.Create(ctx, &models.Post{UserID: uuid.NewString(), PostText: &text})
	assert.True(t, models.IsNotFound(err), "post insert for an unknown owner must surface as not found")

	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestPostRepository_GetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_FeedPaginationIsExhaustive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "lark")

	// All rows share one timestamp so only the id tie-break orders them.
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	total := 2*pagination.DefaultPageSize + 5
	for i := 0; i < total; i++ {
		createTestPost(t, db, owner, "post", at)
	}

	seen := map[string]bool{}
	page := 1
	for {
		feed, err := repo.ListFeed(ctx, pagination.New(page, pagination.DefaultPageSize))
		require.NoError(t, err)

		for _, p := range feed.Posts {
			assert.False(t, seen[p.PostID], "post %s appeared on two pages", p.PostID)
			seen[p.PostID] = true
		}

		if !feed.NextPage {
			assert.Len(t, feed.Posts, 5)
			break
		}
		assert.Len(t, feed.Posts, pagination.DefaultPageSize)
		page++
	}

	assert.Equal(t, 3, page)
	assert.Len(t, seen, total)
}

func TestPostRepository_ListByOwnerFiltersAndOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	old := createTestPost(t, db, alice, "old", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	recent := createTestPost(t, db, alice, "recent", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	createTestPost(t, db, bob, "other", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	feed, err := repo.ListByOwner(ctx, alice.UserID, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)
	assert.False(t, feed.NextPage)
	assert.Equal(t, recent.PostID, feed.Posts[0].PostID)
	assert.Equal(t, old.PostID, feed.Posts[1].PostID)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	replies := NewReplyRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	post := createTestPost(t, db, alice, "doomed", time.Now())
	text := "a reply"
	reply, err := replies.Create(ctx, &models.Reply{PostID: post.PostID, ReplierID: bob.UserID, PostText: &text})
	require.NoError(t, err)

	require.NoError(t, likes.SetPostLike(ctx, post.PostID, bob.UserID, models.LikeAdd))
	require.NoError(t, likes.SetReplyLike(ctx, reply.ReplyID, alice.UserID, models.LikeAdd))

	deleted, err := posts.Delete(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, post.PostID, deleted.PostID)

	var postCount, replyCount, likeCount int64
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Reply{}).Count(&replyCount)
	db.Model(&models.Like{}).Count(&likeCount)
	assert.Zero(t, postCount)
	assert.Zero(t, replyCount)
	assert.Zero(t, likeCount, "likes of the post and of its replies must both be gone")

	_, err = posts.Delete(ctx, post.PostID)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_RecomputeCountersRepairsDrift(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	replies := NewReplyRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	post := createTestPost(t, db, alice, "drifty", time.Now())
	text := "r"
	_, err := replies.Create(ctx, &models.Reply{PostID: post.PostID, ReplierID: bob.UserID, PostText: &text})
	require.NoError(t, err)
	require.NoError(t, likes.SetPostLike(ctx, post.PostID, bob.UserID, models.LikeAdd))

	// Simulate drift left behind by an interrupted sequence.
	require.NoError(t, db.Model(&models.Post{}).
		Where("post_id = ?", post.PostID).
		Updates(map[string]interface{}{"like_count": 7, "reply_count": 0}).Error)

	repaired, err := posts.RecomputeCounters(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired.LikeCount)
	assert.Equal(t, 1, repaired.ReplyCount)

	_, err = posts.RecomputeCounters(ctx, uuid.NewString())
	assert.True(t, models.IsNotFound(err))
}
