// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"warble/internal/cache"
	"warble/internal/middleware"
	"warble/internal/models"
	"warble/internal/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ownerColumns joins the author's display fields onto each post row.
const ownerColumns = "posts.*, users.username AS username, users.display_name AS display_name, users.profile_picture AS profile_picture"

// feedOrder is the total order for every post listing. The post_id tie-break
// keeps rows created in the same instant from straddling a page boundary
// differently between requests.
const feedOrder = "posts.created_at DESC, posts.post_id DESC"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	ListFeed(ctx context.Context, p pagination.Params) (*models.FeedPage, error)
	ListByOwner(ctx context.Context, ownerID string, p pagination.Params) (*models.FeedPage, error)
	Delete(ctx context.Context, postID string) (*models.Post, error)
	RecomputeCounters(ctx context.Context, postID string) (*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(ownerColumns).
		Joins("JOIN users ON users.user_id = posts.user_id")
}

func (r *postRepository) fetchByID(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := r.withOwner(ctx).Where("posts.post_id = ?", postID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", postID)
		}
		return nil, models.NewPersistenceError("failed to load post", err)
	}
	return &post, nil
}

// Create inserts the post and reselects it with the owner projection so the
// caller can echo the complete feed row back to the client.
func (r *postRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.PostID == "" {
		post.PostID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, models.NewNotFoundError("user", post.UserID)
		}
		return nil, models.NewPersistenceError("failed to create post", err)
	}

	return r.fetchByID(ctx, post.PostID)
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	return cache.Aside(ctx, cache.PostKey(postID), cache.PostTTL, func() (*models.Post, error) {
		return r.fetchByID(ctx, postID)
	})
}

func (r *postRepository) listPage(ctx context.Context, p pagination.Params, scope func(*gorm.DB) *gorm.DB) (*models.FeedPage, error) {
	var rows []*models.Post
	q := scope(r.withOwner(ctx)).
		Order(feedOrder).
		Limit(p.PeekLimit()).
		Offset(p.Offset())
	if err := q.Find(&rows).Error; err != nil {
		return nil, models.NewPersistenceError("failed to list posts", err)
	}

	posts, more := pagination.Trim(rows, p.Size)
	return &models.FeedPage{Posts: posts, NextPage: more}, nil
}

func (r *postRepository) ListFeed(ctx context.Context, p pagination.Params) (*models.FeedPage, error) {
	return r.listPage(ctx, p, func(q *gorm.DB) *gorm.DB { return q })
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID string, p pagination.Params) (*models.FeedPage, error) {
	return r.listPage(ctx, p, func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.user_id = ?", ownerID)
	})
}

// Delete removes the post and everything hanging off it in one transaction:
// likes of its replies, the replies themselves, likes of the post, then the
// post row. Returns the deleted post so the caller can release its media
// assets after commit.
func (r *postRepository) Delete(ctx context.Context, postID string) (*models.Post, error) {
	post, err := r.fetchByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reply likes key on the reply's id in the shared likes relation.
		if err := tx.Exec(
			"DELETE FROM post_likes WHERE post_id IN (SELECT reply_id FROM replies WHERE post_id = ?)",
			postID,
		).Error; err != nil {
			return models.NewPersistenceError("failed to delete reply likes", err)
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.Reply{}).Error; err != nil {
			return models.NewPersistenceError("failed to delete replies", err)
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return models.NewPersistenceError("failed to delete post likes", err)
		}

		res := tx.Where("post_id = ?", postID).Delete(&models.Post{})
		if res.Error != nil {
			return models.NewPersistenceError("failed to delete post", res.Error)
		}
		if res.RowsAffected == 0 {
			// Deleted concurrently between the fetch and this statement.
			return models.NewNotFoundError("post", postID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID)
	middleware.CascadeDeletes.WithLabelValues("post").Inc()
	return post, nil
}

// RecomputeCounters rebuilds the post's denormalized counters from the
// relation tables. It is the repair path for counter drift left behind by
// interrupted sequences.
func (r *postRepository) RecomputeCounters(ctx context.Context, postID string) (*models.Post, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE posts SET
			like_count = (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.post_id),
			reply_count = (SELECT COUNT(*) FROM replies WHERE replies.post_id = posts.post_id)
		WHERE posts.post_id = ?`,
		postID,
	)
	if res.Error != nil {
		return nil, models.NewPersistenceError("failed to recompute post counters", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("post", postID)
	}

	cache.InvalidatePost(ctx, postID)
	middleware.CounterRepairs.WithLabelValues("post").Inc()
	return r.fetchByID(ctx, postID)
}
