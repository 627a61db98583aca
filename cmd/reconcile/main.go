// Command main walks every post and reply and rebuilds their denormalized
// counters from the relation tables, logging any drift it repaired. Run it
// after incidents that may have interrupted engagement sequences.
package main

import (
	"context"
	"log"

	"warble/internal/config"
	"warble/internal/database"
	"warble/internal/models"
	"warble/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	ctx := context.Background()
	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)

	var posts []models.Post
	if err := db.Select("post_id", "like_count", "reply_count").Find(&posts).Error; err != nil {
		log.Fatalf("Failed to list posts: %v", err)
	}

	drifted := 0
	for _, before := range posts {
		after, err := postRepo.RecomputeCounters(ctx, before.PostID)
		if err != nil {
			log.Printf("post %s: recompute failed: %v", before.PostID, err)
			continue
		}
		if after.LikeCount != before.LikeCount || after.ReplyCount != before.ReplyCount {
			drifted++
			log.Printf("post %s: likes %d -> %d, replies %d -> %d",
				before.PostID, before.LikeCount, after.LikeCount, before.ReplyCount, after.ReplyCount)
		}
	}

	var replies []models.Reply
	if err := db.Select("reply_id", "like_count").Find(&replies).Error; err != nil {
		log.Fatalf("Failed to list replies: %v", err)
	}

	for _, before := range replies {
		after, err := replyRepo.RecomputeCounters(ctx, before.ReplyID)
		if err != nil {
			log.Printf("reply %s: recompute failed: %v", before.ReplyID, err)
			continue
		}
		if after.LikeCount != before.LikeCount {
			drifted++
			log.Printf("reply %s: likes %d -> %d", before.ReplyID, before.LikeCount, after.LikeCount)
		}
	}

	log.Printf("Reconciliation complete: %d posts, %d replies checked, %d repaired",
		len(posts), len(replies), drifted)
}
