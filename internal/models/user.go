// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account that owns posts, replies, likes and follow edges.
type User struct {
	UserID                  string    `gorm:"primaryKey;type:char(36);column:user_id" json:"userId"`
	Username                string    `gorm:"uniqueIndex;not null;size:32" json:"username"`
	DisplayName             string    `gorm:"size:64" json:"displayName"`
	Email                   string    `gorm:"uniqueIndex;not null" json:"-"`
	Password                string    `gorm:"not null" json:"-"`
	BioText                 string    `gorm:"type:text" json:"bioText"`
	ProfilePicture          string    `json:"profilePicture"`
	ProfilePicturePublicID  string    `gorm:"column:profile_picture_public_id" json:"-"`
	HeaderPicture           string    `json:"headerPicture"`
	HeaderPicturePublicID   string    `gorm:"column:header_picture_public_id" json:"-"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`

	// Posts declares the has-many side so migration puts the foreign key on
	// posts.user_id referencing users.user_id.
	Posts []*Post `gorm:"foreignKey:UserID" json:"-"`
}

// ContentTotals holds per-user post/reply counts, computed on read.
type ContentTotals struct {
	PostCount  int64 `json:"postCount"`
	ReplyCount int64 `json:"replyCount"`
}
