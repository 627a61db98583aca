// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a top-level post in the feed.
//
// LikeCount and ReplyCount are denormalized projections of the post_likes and
// replies tables. They are only ever moved by relative updates inside the same
// transaction as the relation row they mirror, and can be repaired with
// RecomputeCounters.
type Post struct {
	PostID        string    `gorm:"primaryKey;type:char(36);column:post_id" json:"postId"`
	UserID        string    `gorm:"type:char(36);not null;index;column:user_id" json:"userId"`
	CreatedAt     time.Time `gorm:"index:idx_posts_created_at,sort:desc" json:"createdAt"`
	PostText      *string   `gorm:"type:text" json:"postText"`
	PostMedia     *string   `json:"postMedia"`
	MediaTypes    *string   `json:"mediaTypes"`
	MediaPublicID *string   `gorm:"column:media_public_id" json:"-"`
	LikeCount     int       `gorm:"not null;default:0" json:"likeCount"`
	ReplyCount    int       `gorm:"not null;default:0" json:"replyCount"`

	// Owner display fields joined from users at query time.
	Username       string `gorm:"->;-:migration" json:"username"`
	DisplayName    string `gorm:"->;-:migration" json:"displayName"`
	ProfilePicture string `gorm:"->;-:migration" json:"profilePicture"`
}

// FeedPage is a single page of posts with the peek-ahead next-page signal.
type FeedPage struct {
	Posts    []*Post `json:"posts"`
	NextPage bool    `json:"nextPage"`
}
