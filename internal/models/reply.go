package models

import (
	"time"
)

// Reply is a threaded response to a post. PosterID denormalizes the parent
// post's owner so reply pages render without joining through posts.
// ReplyCount is reserved for nested replies and is not moved by any current
// operation.
type Reply struct {
	ReplyID    string    `gorm:"primaryKey;type:char(36);column:reply_id" json:"replyId"`
	PostID     string    `gorm:"type:char(36);not null;index;column:post_id" json:"postId"`
	ReplierID  string    `gorm:"type:char(36);not null;index;column:replier_id" json:"replierId"`
	PosterID   string    `gorm:"type:char(36);not null;column:poster_id" json:"posterId"`
	CreatedAt  time.Time `json:"createdAt"`
	PostText   *string   `gorm:"type:text" json:"postText"`
	LikeCount  int       `gorm:"not null;default:0" json:"likeCount"`
	ReplyCount int       `gorm:"not null;default:0" json:"replyCount"`

	// Display fields joined from users at query time.
	ReplierUserName       string `gorm:"->;-:migration" json:"replierUserName"`
	ReplierDisplayName    string `gorm:"->;-:migration" json:"replierDisplayName"`
	ReplierProfilePicture string `gorm:"->;-:migration" json:"replierProfilePicture"`
	PosterUserName        string `gorm:"->;-:migration" json:"posterUserName"`
}

// ReplyPage is a single page of replies. NextPageCount is a convenience cursor
// for clients that prefer an explicit next-page token over incrementing locally.
type ReplyPage struct {
	Replies       []*Reply `json:"replies"`
	NextPage      bool     `json:"nextPage"`
	NextPageCount int      `json:"nextPageCount"`
}
