package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"warble/internal/media"
	"warble/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePostSanitizesText(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		UserID:   alice.UserID,
		PostText: "  <script>alert(1)</script>hello <b>world</b>  ",
	})
	require.NoError(t, err)
	require.NotNil(t, post.PostText)
	assert.Equal(t, "hello world", *post.PostText)
}

func TestPostService_CreatePostValidation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	_, err := env.posts.CreatePost(ctx, CreatePostInput{UserID: alice.UserID, PostText: "   "})
	assert.Error(t, err)

	_, err = env.posts.CreatePost(ctx, CreatePostInput{
		UserID:   alice.UserID,
		PostText: strings.Repeat("x", maxPostTextLen+1),
	})
	assert.Error(t, err)

	// Length is measured in characters, not bytes: 400 two-byte runes fit.
	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		UserID:   alice.UserID,
		PostText: strings.Repeat("é", 400),
	})
	require.NoError(t, err)
	require.NotNil(t, post.PostText)
	assert.Equal(t, 400, utf8.RuneCountInString(*post.PostText))

	_, err = env.posts.CreatePost(ctx, CreatePostInput{
		UserID:   alice.UserID,
		PostText: strings.Repeat("é", maxPostTextLen+1),
	})
	assert.Error(t, err)

	// Media-only posts are fine.
	post, err = env.posts.CreatePost(ctx, CreatePostInput{
		UserID: alice.UserID,
		Media: []media.Ref{
			{URL: "https://cdn.example/a.jpg", PublicID: "warble/a", Type: "image"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, post.PostText)
	require.NotNil(t, post.PostMedia)
	assert.Equal(t, "https://cdn.example/a.jpg", *post.PostMedia)
}

func TestPostService_DeletePostOwnershipAndRelease(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		UserID:   alice.UserID,
		PostText: "with media",
		Media: []media.Ref{
			{URL: "https://cdn.example/a.jpg", PublicID: "warble/a", Type: "image"},
			{URL: "https://cdn.example/b.mp4", PublicID: "warble/b", Type: "video"},
		},
	})
	require.NoError(t, err)

	err = env.posts.DeletePost(ctx, post.PostID, bob.UserID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)
	assert.Empty(t, env.provider.released)

	require.NoError(t, env.posts.DeletePost(ctx, post.PostID, alice.UserID))
	assert.ElementsMatch(t, []string{"warble/a", "warble/b"}, env.provider.released)
}

func TestPostService_DeletePostSurvivesReleaseFailure(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		UserID: alice.UserID,
		Media:  []media.Ref{{URL: "u", PublicID: "warble/stuck", Type: "image"}},
	})
	require.NoError(t, err)

	env.provider.failIDs["warble/stuck"] = true

	// The delete commits even though the release is rejected.
	require.NoError(t, env.posts.DeletePost(ctx, post.PostID, alice.UserID))

	_, err = env.posts.GetPost(ctx, post.PostID)
	assert.True(t, models.IsNotFound(err))
}

func TestPostService_DeleteReplyPermissions(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	post, err := env.posts.CreatePost(ctx, CreatePostInput{UserID: alice.UserID, PostText: "parent"})
	require.NoError(t, err)

	mkReply := func() *models.Reply {
		reply, err := env.posts.CreateReply(ctx, CreateReplyInput{
			PostID:    post.PostID,
			ReplierID: bob.UserID,
			PostText:  "a reply",
		})
		require.NoError(t, err)
		return reply
	}

	// A bystander may not delete.
	reply := mkReply()
	err = env.posts.DeleteReply(ctx, reply.ReplyID, carol.UserID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	// The replier may.
	require.NoError(t, env.posts.DeleteReply(ctx, reply.ReplyID, bob.UserID))

	// So may the parent post's owner.
	reply = mkReply()
	require.NoError(t, env.posts.DeleteReply(ctx, reply.ReplyID, alice.UserID))
}

func TestPostService_SetLikeValidatesAction(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	post, err := env.posts.CreatePost(ctx, CreatePostInput{UserID: alice.UserID, PostText: "p"})
	require.NoError(t, err)

	err = env.posts.SetPostLike(ctx, post.PostID, alice.UserID, models.LikeAction("boost"))
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	require.NoError(t, env.posts.SetPostLike(ctx, post.PostID, alice.UserID, models.LikeAdd))

	fetched, err := env.posts.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.LikeCount)
}

func TestPostService_RecountPost(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	post, err := env.posts.CreatePost(ctx, CreatePostInput{UserID: alice.UserID, PostText: "p"})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.Post{}).
		Where("post_id = ?", post.PostID).
		UpdateColumn("like_count", 99).Error)

	repaired, err := env.posts.RecountPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired.LikeCount)
}
