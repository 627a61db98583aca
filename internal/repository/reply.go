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

// replierColumns joins both the replier's display fields and the parent
// poster's username onto each reply row.
const replierColumns = `replies.*,
	repliers.username AS replier_user_name,
	repliers.display_name AS replier_display_name,
	repliers.profile_picture AS replier_profile_picture,
	posters.username AS poster_user_name`

const replyOrder = "replies.created_at DESC, replies.reply_id DESC"

// ReplyRepository defines the interface for reply data operations
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) (*models.Reply, error)
	GetByID(ctx context.Context, replyID string) (*models.Reply, error)
	ListByPost(ctx context.Context, postID string, p pagination.Params) (*models.ReplyPage, error)
	Delete(ctx context.Context, replyID string) (*models.Reply, error)
	RecomputeCounters(ctx context.Context, replyID string) (*models.Reply, error)
}

type replyRepository struct {
	db *gorm.DB
}

// NewReplyRepository creates a new reply repository
func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) withUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Reply{}).
		Select(replierColumns).
		Joins("JOIN users repliers ON repliers.user_id = replies.replier_id").
		Joins("JOIN users posters ON posters.user_id = replies.poster_id")
}

func (r *replyRepository) fetchByID(ctx context.Context, replyID string) (*models.Reply, error) {
	var reply models.Reply
	err := r.withUsers(ctx).Where("replies.reply_id = ?", replyID).First(&reply).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("reply", replyID)
		}
		return nil, models.NewPersistenceError("failed to load reply", err)
	}
	return &reply, nil
}

func (r *replyRepository) GetByID(ctx context.Context, replyID string) (*models.Reply, error) {
	return r.fetchByID(ctx, replyID)
}

// Create inserts the reply and increments the parent post's reply counter in
// the same transaction, so the counter can never drift from the relation it
// mirrors. The parent owner's id is denormalized onto the reply at insert.
func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) (*models.Reply, error) {
	var parent models.Post
	err := r.db.WithContext(ctx).
		Select("post_id", "user_id").
		Where("post_id = ?", reply.PostID).
		First(&parent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", reply.PostID)
		}
		return nil, models.NewPersistenceError("failed to load parent post", err)
	}

	if reply.ReplyID == "" {
		reply.ReplyID = uuid.NewString()
	}
	reply.PosterID = parent.UserID

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return models.NewPersistenceError("failed to create reply", err)
		}

		res := tx.Model(&models.Post{}).
			Where("post_id = ?", reply.PostID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + 1"))
		if res.Error != nil {
			return models.NewPersistenceError("failed to increment reply counter", res.Error)
		}
		if res.RowsAffected == 0 {
			// Parent deleted between the existence check and this statement.
			return models.NewNotFoundError("post", reply.PostID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, reply.PostID)
	return r.fetchByID(ctx, reply.ReplyID)
}

func (r *replyRepository) ListByPost(ctx context.Context, postID string, p pagination.Params) (*models.ReplyPage, error) {
	var rows []*models.Reply
	err := r.withUsers(ctx).
		Where("replies.post_id = ?", postID).
		Order(replyOrder).
		Limit(p.PeekLimit()).
		Offset(p.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewPersistenceError("failed to list replies", err)
	}

	replies, more := pagination.Trim(rows, p.Size)
	return &models.ReplyPage{
		Replies:       replies,
		NextPage:      more,
		NextPageCount: p.NextPageCount(),
	}, nil
}

// Delete removes the reply, its likes and the parent's counter contribution
// in one transaction. The decrement floors at zero so a drifted counter can
// never go negative.
func (r *replyRepository) Delete(ctx context.Context, replyID string) (*models.Reply, error) {
	reply, err := r.fetchByID(ctx, replyID)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("reply_id = ?", replyID).Delete(&models.Reply{})
		if res.Error != nil {
			return models.NewPersistenceError("failed to delete reply", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("reply", replyID)
		}

		if err := tx.Where("post_id = ?", replyID).Delete(&models.Like{}).Error; err != nil {
			return models.NewPersistenceError("failed to delete reply likes", err)
		}

		if err := tx.Model(&models.Post{}).
			Where("post_id = ?", reply.PostID).
			UpdateColumn("reply_count", gorm.Expr("CASE WHEN reply_count > 0 THEN reply_count - 1 ELSE 0 END")).
			Error; err != nil {
			return models.NewPersistenceError("failed to decrement reply counter", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, reply.PostID)
	middleware.CascadeDeletes.WithLabelValues("reply").Inc()
	return reply, nil
}

// RecomputeCounters rebuilds the reply's like counter from the shared likes
// relation, which keys reply likes by the reply's id.
func (r *replyRepository) RecomputeCounters(ctx context.Context, replyID string) (*models.Reply, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE replies SET
			like_count = (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = replies.reply_id)
		WHERE replies.reply_id = ?`,
		replyID,
	)
	if res.Error != nil {
		return nil, models.NewPersistenceError("failed to recompute reply counters", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("reply", replyID)
	}

	middleware.CounterRepairs.WithLabelValues("reply").Inc()
	return r.fetchByID(ctx, replyID)
}
