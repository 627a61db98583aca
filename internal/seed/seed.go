// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"warble/internal/models"
	"warble/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Run populates the database with a realistic social mesh: users, posts,
// replies, likes and follow edges. All engagement goes through the
// repositories so the denormalized counters start out in agreement with the
// relation tables.
func Run(db *gorm.DB, opts Options) error {
	ctx := context.Background()
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.NumUsers <= 0 {
		opts.NumUsers = 25
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 120
	}

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return err
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d users", len(users))

	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)

	var posts []*models.Post
	for i := 0; i < opts.NumPosts; i++ {
		author := users[r.Intn(len(users))]
		text := gofakeit.Sentence(r.Intn(12) + 3)

		post := &models.Post{
			UserID:    author.UserID,
			PostText:  &text,
			CreatedAt: pastTimestamp(r, 90),
		}
		if r.Intn(4) == 0 {
			url := fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
			publicID := "warble/" + gofakeit.UUID()
			kind := "image"
			post.PostMedia = &url
			post.MediaPublicID = &publicID
			post.MediaTypes = &kind
		}

		created, err := postRepo.Create(ctx, post)
		if err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, created)
	}
	log.Printf("Seeded %d posts", len(posts))

	var replies []*models.Reply
	for _, post := range posts {
		for i := 0; i < r.Intn(4); i++ {
			replier := users[r.Intn(len(users))]
			text := gofakeit.Sentence(r.Intn(8) + 2)
			reply, err := replyRepo.Create(ctx, &models.Reply{
				PostID:    post.PostID,
				ReplierID: replier.UserID,
				PostText:  &text,
			})
			if err != nil {
				return fmt.Errorf("seed reply: %w", err)
			}
			replies = append(replies, reply)
		}
	}
	log.Printf("Seeded %d replies", len(replies))

	likes := 0
	for _, post := range posts {
		for _, user := range users {
			if r.Intn(5) != 0 {
				continue
			}
			err := likeRepo.SetPostLike(ctx, post.PostID, user.UserID, models.LikeAdd)
			if err != nil && !models.IsConflict(err) {
				return fmt.Errorf("seed like: %w", err)
			}
			likes++
		}
	}
	for _, reply := range replies {
		if r.Intn(3) != 0 {
			continue
		}
		user := users[r.Intn(len(users))]
		err := likeRepo.SetReplyLike(ctx, reply.ReplyID, user.UserID, models.LikeAdd)
		if err != nil && !models.IsConflict(err) {
			return fmt.Errorf("seed reply like: %w", err)
		}
		likes++
	}
	log.Printf("Seeded %d likes", likes)

	follows := 0
	for _, follower := range users {
		for _, followed := range users {
			if follower.UserID == followed.UserID || r.Intn(6) != 0 {
				continue
			}
			err := followRepo.Follow(ctx, follower.UserID, followed.UserID)
			if err != nil && !models.IsConflict(err) {
				return fmt.Errorf("seed follow: %w", err)
			}
			follows++
		}
	}
	log.Printf("Seeded %d follow edges", follows)

	return nil
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		name := gofakeit.Name()
		user := &models.User{
			UserID:         uuid.NewString(),
			Username:       fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			DisplayName:    name,
			Email:          gofakeit.Email(),
			Password:       string(hash),
			BioText:        gofakeit.Sentence(10),
			ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func pastTimestamp(r *rand.Rand, maxDays int) time.Time {
	return time.Now().
		Add(-time.Duration(r.Intn(maxDays*24)) * time.Hour).
		Add(-time.Duration(r.Intn(60)) * time.Minute)
}

func clean(db *gorm.DB) error {
	// Relation tables first, then the rows they reference.
	for _, table := range []string{"post_likes", "replies", "user_follows", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}
	return nil
}
