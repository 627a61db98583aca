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

func TestReplyRepository_CreateMovesParentCounter(t *testing.T) {
	db := setupTestDB(t)
	replies := NewReplyRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice, "parent", time.Now())

	text := "hello"
	reply, err := replies.Create(ctx, &models.Reply{PostID: post.PostID, ReplierID: bob.UserID, PostText: &text})
	require.NoError(t, err)

	assert.Equal(t, alice.UserID, reply.PosterID, "parent owner must be denormalized onto the reply")
	assert.Equal(t, "bob", reply.ReplierUserName)
	assert.Equal(t, "alice", reply.PosterUserName)

	var parent models.Post
	require.NoError(t, db.Where("post_id = ?", post.PostID).First(&parent).Error)
	assert.Equal(t, 1, parent.ReplyCount)
}

func TestReplyRepository_CreateMissingParent(t *testing.T) {
	db := setupTestDB(t)
	replies := NewReplyRepository(db)

	bob := createTestUser(t, db, "bob")
	text := "orphan"
	_, err := replies.Create(context.Background(), &models.Reply{
		PostID:    uuid.NewString(),
		ReplierID: bob.UserID,
		PostText:  &text,
	})
	assert.True(t, models.IsNotFound(err))

	var count int64
	db.Model(&models.Reply{}).Count(&count)
	assert.Zero(t, count, "no reply row may survive a failed create")
}

func TestReplyRepository_ListByPostPeeksAhead(t *testing.T) {
	db := setupTestDB(t)
	replies := NewReplyRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice, "busy", time.Now())

	text := "r"
	for i := 0; i < 4; i++ {
		_, err := replies.Create(ctx, &models.Reply{PostID: post.PostID, ReplierID: bob.UserID, PostText: &text})
		require.NoError(t, err)
	}

	page, err := replies.ListByPost(ctx, post.PostID, pagination.New(1, 3))
	require.NoError(t, err)
	assert.Len(t, page.Replies, 3)
	assert.True(t, page.NextPage)
	assert.Equal(t, 2, page.NextPageCount)

	page, err = replies.ListByPost(ctx, post.PostID, pagination.New(2, 3))
	require.NoError(t, err)
	assert.Len(t, page.Replies, 1)
	assert.False(t, page.NextPage)
}

func TestReplyRepository_DeleteFloorsParentCounter(t *testing.T) {
	db := setupTestDB(t)
	replies := NewReplyRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice, "parent", time.Now())

	text := "bye"
	reply, err := replies.Create(ctx, &models.Reply{PostID: post.PostID, ReplierID: bob.UserID, PostText: &text})
	require.NoError(t, err)
	require.NoError(t, likes.SetReplyLike(ctx, reply.ReplyID, alice.UserID, models.LikeAdd))

	// Drift the parent counter to zero before the delete; the floored
	// decrement must leave it at zero instead of going negative.
	require.NoError(t, db.Model(&models.Post{}).
		Where("post_id = ?", post.PostID).
		UpdateColumn("reply_count", 0).Error)

	deleted, err := replies.Delete(ctx, reply.ReplyID)
	require.NoError(t, err)
	assert.Equal(t, reply.ReplyID, deleted.ReplyID)

	var parent models.Post
	require.NoError(t, db.Where("post_id = ?", post.PostID).First(&parent).Error)
	assert.Equal(t, 0, parent.ReplyCount)

	var likeCount int64
	db.Model(&models.Like{}).Count(&likeCount)
	assert.Zero(t, likeCount, "reply likes must be deleted with the reply")

	_, err = replies.Delete(ctx, reply.ReplyID)
	assert.True(t, models.IsNotFound(err))
}

func TestReplyRepository_RecomputeCounters(t *testing.T) {
	db := setupTestDB(t)
	replies := NewReplyRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice, "parent", time.Now())

	text := "liked"
	reply, err := replies.Create(ctx, &models.Reply{PostID: post.PostID, ReplierID: bob.UserID, PostText: &text})
	require.NoError(t, err)
	require.NoError(t, likes.SetReplyLike(ctx, reply.ReplyID, alice.UserID, models.LikeAdd))

	require.NoError(t, db.Model(&models.Reply{}).
		Where("reply_id = ?", reply.ReplyID).
		UpdateColumn("like_count", 42).Error)

	repaired, err := replies.RecomputeCounters(ctx, reply.ReplyID)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired.LikeCount)
}
