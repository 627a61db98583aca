package repository

import (
	"context"
	"errors"
	"fmt"

	"warble/internal/cache"
	"warble/internal/models"

	"gorm.io/gorm"
)

// likeCountFloor decrements without ever crossing zero, so a drifted counter
// degrades to "stuck at zero" instead of going negative.
const likeCountFloor = "CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END"

// LikeRepository defines the interface for like data operations. Posts and
// replies share one likes relation; the two Set methods differ only in which
// counter table they move.
type LikeRepository interface {
	SetPostLike(ctx context.Context, postID, userID string, action models.LikeAction) error
	SetReplyLike(ctx context.Context, replyID, userID string, action models.LikeAction) error
	IsLiked(ctx context.Context, targetID, userID string) (bool, error)
	LikedTargetIDs(ctx context.Context, userID string) ([]string, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// setLike moves the like row and the target's counter together in one
// transaction. The relation row is the source of truth: its insert or delete
// decides whether the request is a duplicate, and the counter update is a
// relative adjustment that never overwrites concurrent movement.
func (r *likeRepository) setLike(ctx context.Context, resource, table, idColumn, targetID, userID string, action models.LikeAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch action {
		case models.LikeAdd:
			like := models.Like{TargetID: targetID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return models.NewConflictError("already liked")
				}
				return models.NewPersistenceError("failed to record like", err)
			}

			res := tx.Table(table).
				Where(idColumn+" = ?", targetID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1"))
			if res.Error != nil {
				return models.NewPersistenceError("failed to increment like counter", res.Error)
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError(resource, targetID)
			}

		case models.LikeRemove:
			res := tx.Where("post_id = ? AND user_id = ?", targetID, userID).Delete(&models.Like{})
			if res.Error != nil {
				return models.NewPersistenceError("failed to remove like", res.Error)
			}
			if res.RowsAffected == 0 {
				return models.NewConflictError("not liked")
			}

			res = tx.Table(table).
				Where(idColumn+" = ?", targetID).
				UpdateColumn("like_count", gorm.Expr(likeCountFloor))
			if res.Error != nil {
				return models.NewPersistenceError("failed to decrement like counter", res.Error)
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError(resource, targetID)
			}

		default:
			return models.NewValidationError(fmt.Sprintf("unknown like action %q", action))
		}
		return nil
	})
}

func (r *likeRepository) SetPostLike(ctx context.Context, postID, userID string, action models.LikeAction) error {
	if err := r.setLike(ctx, "post", "posts", "post_id", postID, userID, action); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *likeRepository) SetReplyLike(ctx context.Context, replyID, userID string, action models.LikeAction) error {
	return r.setLike(ctx, "reply", "replies", "reply_id", replyID, userID, action)
}

func (r *likeRepository) IsLiked(ctx context.Context, targetID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", targetID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewPersistenceError("failed to check like", err)
	}
	return count > 0, nil
}

// LikedTargetIDs returns every target id the user has liked, newest first.
func (r *likeRepository) LikedTargetIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, models.NewPersistenceError("failed to list liked targets", err)
	}
	return ids, nil
}
