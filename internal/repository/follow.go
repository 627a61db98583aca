package repository

import (
	"context"
	"errors"

	"warble/internal/cache"
	"warble/internal/models"

	"gorm.io/gorm"
)

const profileColumns = "users.profile_picture, users.username, users.display_name, users.bio_text"

// FollowRepository defines the interface for follow graph operations.
// Tallies are computed on read, so writes only touch the edge relation.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID string) error
	Unfollow(ctx context.Context, followerID, followedID string) error
	Tally(ctx context.Context, userID string) (*models.FollowTally, error)
	Connections(ctx context.Context, userID string) (*models.Connections, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts the directed edge. The composite primary key turns a repeat
// follow into a duplicate-key error, reported as a conflict.
func (r *followRepository) Follow(ctx context.Context, followerID, followedID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", followedID).
		Count(&count).Error; err != nil {
		return models.NewPersistenceError("failed to check followed user", err)
	}
	if count == 0 {
		return models.NewNotFoundError("user", followedID)
	}

	edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("already following")
		}
		return models.NewPersistenceError("failed to create follow edge", err)
	}

	cache.InvalidateTally(ctx, followerID)
	cache.InvalidateTally(ctx, followedID)
	return nil
}

// Unfollow deletes the edge. Removing an edge that does not exist is reported
// as not found rather than silently succeeding.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID string) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return models.NewPersistenceError("failed to delete follow edge", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("follow edge", followedID)
	}

	cache.InvalidateTally(ctx, followerID)
	cache.InvalidateTally(ctx, followedID)
	return nil
}

// Tally computes both directions of the user's follow edges on read. The
// username slices stay nil when empty so they serialize as JSON null.
func (r *followRepository) Tally(ctx context.Context, userID string) (*models.FollowTally, error) {
	return cache.Aside(ctx, cache.TallyKey(userID), cache.TallyTTL, func() (*models.FollowTally, error) {
		var tally models.FollowTally

		err := r.db.WithContext(ctx).
			Model(&models.Follow{}).
			Joins("JOIN users ON users.user_id = user_follows.followed_id").
			Where("user_follows.follower_id = ?", userID).
			Pluck("users.username", &tally.Following).Error
		if err != nil {
			return nil, models.NewPersistenceError("failed to load following", err)
		}

		err = r.db.WithContext(ctx).
			Model(&models.Follow{}).
			Joins("JOIN users ON users.user_id = user_follows.follower_id").
			Where("user_follows.followed_id = ?", userID).
			Pluck("users.username", &tally.Followers).Error
		if err != nil {
			return nil, models.NewPersistenceError("failed to load followers", err)
		}

		tally.FollowingCount = len(tally.Following)
		tally.FollowersCount = len(tally.Followers)
		if tally.FollowingCount == 0 {
			tally.Following = nil
		}
		if tally.FollowersCount == 0 {
			tally.Followers = nil
		}
		return &tally, nil
	})
}

// Connections returns joined profile projections for both directions, each
// ordered by edge creation time descending.
func (r *followRepository) Connections(ctx context.Context, userID string) (*models.Connections, error) {
	var conns models.Connections

	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Select(profileColumns).
		Joins("JOIN users ON users.user_id = user_follows.followed_id").
		Where("user_follows.follower_id = ?", userID).
		Order("user_follows.created_at DESC").
		Scan(&conns.Following).Error
	if err != nil {
		return nil, models.NewPersistenceError("failed to load following profiles", err)
	}

	err = r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Select(profileColumns).
		Joins("JOIN users ON users.user_id = user_follows.follower_id").
		Where("user_follows.followed_id = ?", userID).
		Order("user_follows.created_at DESC").
		Scan(&conns.Followers).Error
	if err != nil {
		return nil, models.NewPersistenceError("failed to load follower profiles", err)
	}

	return &conns, nil
}
