package models

import (
	"time"
)

// Follow is a directed edge from follower to followed. Aggregate tallies are
// computed on read, so the only invariant carried by this table is the
// composite-key uniqueness of the edge itself.
type Follow struct {
	FollowerID string    `gorm:"primaryKey;type:char(36);column:follower_id" json:"followerId"`
	FollowedID string    `gorm:"primaryKey;type:char(36);column:followed_id" json:"followedId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "user_follows"
}

// FollowTally is the computed-on-read aggregate for a user's follow edges.
// The username slices are null (not empty arrays) when the user has no edges
// in that direction.
type FollowTally struct {
	FollowingCount int      `json:"followingCount"`
	FollowersCount int      `json:"followersCount"`
	Following      []string `json:"following"`
	Followers      []string `json:"followers"`
}

// FollowProfile is the joined profile projection returned by connection lists.
type FollowProfile struct {
	ProfilePicture string `json:"profilePicture"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	BioText        string `json:"bioText"`
}

// Connections groups both directions of a user's follow edges, each ordered by
// edge creation time descending.
type Connections struct {
	Following []FollowProfile `json:"following"`
	Followers []FollowProfile `json:"followers"`
}
