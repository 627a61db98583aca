package repository

import (
	"context"
	"errors"

	"warble/internal/cache"
	"warble/internal/middleware"
	"warble/internal/models"

	"gorm.io/gorm"
)

// ProfileUpdate carries the mutable profile fields. Nil fields are left
// untouched so partial updates never clobber concurrent edits to other fields.
type ProfileUpdate struct {
	DisplayName            *string
	BioText                *string
	ProfilePicture         *string
	ProfilePicturePublicID *string
	HeaderPicture          *string
	HeaderPicturePublicID  *string
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error)
	Delete(ctx context.Context, userID string) (*models.User, []*models.Post, error)
	ContentTotals(ctx context.Context, userID string) (*models.ContentTotals, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", userID)
		}
		return nil, models.NewPersistenceError("failed to load user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", username)
		}
		return nil, models.NewPersistenceError("failed to load user", err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields and returns the row as it was
// before the update, so the caller can release media assets the update
// displaced.
func (r *userRepository) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	var prev models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&prev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("user", userID)
			}
			return models.NewPersistenceError("failed to load user", err)
		}

		fields := map[string]interface{}{}
		if update.DisplayName != nil {
			fields["display_name"] = *update.DisplayName
		}
		if update.BioText != nil {
			fields["bio_text"] = *update.BioText
		}
		if update.ProfilePicture != nil {
			fields["profile_picture"] = *update.ProfilePicture
		}
		if update.ProfilePicturePublicID != nil {
			fields["profile_picture_public_id"] = *update.ProfilePicturePublicID
		}
		if update.HeaderPicture != nil {
			fields["header_picture"] = *update.HeaderPicture
		}
		if update.HeaderPicturePublicID != nil {
			fields["header_picture_public_id"] = *update.HeaderPicturePublicID
		}
		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("user_id = ?", userID).Updates(fields).Error; err != nil {
			return models.NewPersistenceError("failed to update profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

// Delete removes the account and every row that references it in one
// transaction: likes on and under the user's posts, those posts' replies, the
// user's own replies and likes elsewhere (with the affected counters rebuilt),
// both directions of the follow graph, the posts, then the user row. Returns the deleted
// user and their posts so the caller can release media assets after commit.
func (r *userRepository) Delete(ctx context.Context, userID string) (*models.User, []*models.Post, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var posts []*models.Post
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return nil, nil, models.NewPersistenceError("failed to load user posts", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Likes on replies under the user's posts.
		if err := tx.Exec(
			`DELETE FROM post_likes WHERE post_id IN (
				SELECT reply_id FROM replies WHERE post_id IN (
					SELECT post_id FROM posts WHERE user_id = ?))`,
			userID,
		).Error; err != nil {
			return models.NewPersistenceError("failed to delete nested reply likes", err)
		}

		// Replies under the user's posts.
		if err := tx.Exec(
			"DELETE FROM replies WHERE post_id IN (SELECT post_id FROM posts WHERE user_id = ?)",
			userID,
		).Error; err != nil {
			return models.NewPersistenceError("failed to delete post replies", err)
		}

		// Likes on the user's posts.
		if err := tx.Exec(
			"DELETE FROM post_likes WHERE post_id IN (SELECT post_id FROM posts WHERE user_id = ?)",
			userID,
		).Error; err != nil {
			return models.NewPersistenceError("failed to delete post likes", err)
		}

		// Likes on the user's replies elsewhere.
		if err := tx.Exec(
			"DELETE FROM post_likes WHERE post_id IN (SELECT reply_id FROM replies WHERE replier_id = ?)",
			userID,
		).Error; err != nil {
			return models.NewPersistenceError("failed to delete reply likes", err)
		}

		// Parents of the user's remaining replies need their counters rebuilt
		// once those replies are gone.
		var parentIDs []string
		if err := tx.Model(&models.Reply{}).
			Distinct("post_id").
			Where("replier_id = ?", userID).
			Pluck("post_id", &parentIDs).Error; err != nil {
			return models.NewPersistenceError("failed to collect reply parents", err)
		}

		if err := tx.Where("replier_id = ?", userID).Delete(&models.Reply{}).Error; err != nil {
			return models.NewPersistenceError("failed to delete replies", err)
		}

		if len(parentIDs) > 0 {
			if err := tx.Exec(
				`UPDATE posts SET reply_count = (SELECT COUNT(*) FROM replies WHERE replies.post_id = posts.post_id)
				WHERE posts.post_id IN ?`,
				parentIDs,
			).Error; err != nil {
				return models.NewPersistenceError("failed to rebuild reply counters", err)
			}
		}

		// Targets of the user's own likes need theirs rebuilt too.
		var likedIDs []string
		if err := tx.Model(&models.Like{}).
			Where("user_id = ?", userID).
			Pluck("post_id", &likedIDs).Error; err != nil {
			return models.NewPersistenceError("failed to collect liked targets", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Like{}).Error; err != nil {
			return models.NewPersistenceError("failed to delete likes", err)
		}

		if len(likedIDs) > 0 {
			if err := tx.Exec(
				`UPDATE posts SET like_count = (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.post_id)
				WHERE posts.post_id IN ?`,
				likedIDs,
			).Error; err != nil {
				return models.NewPersistenceError("failed to rebuild post like counters", err)
			}
			if err := tx.Exec(
				`UPDATE replies SET like_count = (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = replies.reply_id)
				WHERE replies.reply_id IN ?`,
				likedIDs,
			).Error; err != nil {
				return models.NewPersistenceError("failed to rebuild reply like counters", err)
			}
		}

		if err := tx.Where("follower_id = ? OR followed_id = ?", userID, userID).
			Delete(&models.Follow{}).Error; err != nil {
			return models.NewPersistenceError("failed to delete follow edges", err)
		}

		// Posts go before the user row; they carry the foreign key to it.
		if err := tx.Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return models.NewPersistenceError("failed to delete posts", err)
		}

		res := tx.Where("user_id = ?", userID).Delete(&models.User{})
		if res.Error != nil {
			return models.NewPersistenceError("failed to delete user", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("user", userID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, p := range posts {
		cache.InvalidatePost(ctx, p.PostID)
	}
	cache.InvalidateTally(ctx, userID)
	middleware.CascadeDeletes.WithLabelValues("user").Inc()
	return user, posts, nil
}

// ContentTotals counts the user's posts and replies on read.
func (r *userRepository) ContentTotals(ctx context.Context, userID string) (*models.ContentTotals, error) {
	var totals models.ContentTotals

	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&totals.PostCount).Error; err != nil {
		return nil, models.NewPersistenceError("failed to count posts", err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Reply{}).
		Where("replier_id = ?", userID).
		Count(&totals.ReplyCount).Error; err != nil {
		return nil, models.NewPersistenceError("failed to count replies", err)
	}

	return &totals, nil
}
