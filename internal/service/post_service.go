// Package service contains the business rules sitting between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"warble/internal/media"
	"warble/internal/middleware"
	"warble/internal/models"
	"warble/internal/pagination"
	"warble/internal/repository"

	"github.com/microcosm-cc/bluemonday"
)

const maxPostTextLen = 500

type PostService struct {
	postRepo  repository.PostRepository
	replyRepo repository.ReplyRepository
	likeRepo  repository.LikeRepository
	provider  media.Provider
	sanitizer *bluemonday.Policy
}

type CreatePostInput struct {
	UserID   string
	PostText string
	Media    []media.Ref
}

type CreateReplyInput struct {
	PostID    string
	ReplierID string
	PostText  string
}

func NewPostService(
	postRepo repository.PostRepository,
	replyRepo repository.ReplyRepository,
	likeRepo repository.LikeRepository,
	provider media.Provider,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		replyRepo: replyRepo,
		likeRepo:  likeRepo,
		provider:  provider,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// sanitizeText strips markup from user text. Posts are plain text; anything
// that survives a strict policy is safe to echo into any client.
func (s *PostService) sanitizeText(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	text := s.sanitizeText(in.PostText)
	if text == "" && len(in.Media) == 0 {
		return nil, models.NewValidationError("post text or media is required")
	}
	if utf8.RuneCountInString(text) > maxPostTextLen {
		return nil, models.NewValidationError("post text too long (max 500 characters)")
	}

	post := &models.Post{UserID: in.UserID}
	if text != "" {
		post.PostText = &text
	}
	post.PostMedia, post.MediaPublicID, post.MediaTypes = media.JoinRefs(in.Media)

	return s.postRepo.Create(ctx, post)
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

func (s *PostService) GetFeed(ctx context.Context, page int) (*models.FeedPage, error) {
	return s.postRepo.ListFeed(ctx, pagination.New(page, pagination.DefaultPageSize))
}

func (s *PostService) GetUserPosts(ctx context.Context, userID string, page int) (*models.FeedPage, error) {
	return s.postRepo.ListByOwner(ctx, userID, pagination.New(page, pagination.DefaultPageSize))
}

// DeletePost cascades the delete and then releases the post's media assets.
// The release runs after commit and never fails the delete: a rejected
// release is logged and counted, leaving an orphaned remote asset rather than
// a half-deleted post.
func (s *PostService) DeletePost(ctx context.Context, postID, callerID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		return models.NewForbiddenError("only the post owner can delete it")
	}

	deleted, err := s.postRepo.Delete(ctx, postID)
	if err != nil {
		return err
	}

	s.releaseRefs(ctx, media.ParseManifest(deleted.MediaPublicID, deleted.MediaTypes))
	return nil
}

func (s *PostService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	text := s.sanitizeText(in.PostText)
	if text == "" {
		return nil, models.NewValidationError("reply text is required")
	}
	if utf8.RuneCountInString(text) > maxPostTextLen {
		return nil, models.NewValidationError("reply text too long (max 500 characters)")
	}

	return s.replyRepo.Create(ctx, &models.Reply{
		PostID:    in.PostID,
		ReplierID: in.ReplierID,
		PostText:  &text,
	})
}

func (s *PostService) GetReplies(ctx context.Context, postID string, page int) (*models.ReplyPage, error) {
	return s.replyRepo.ListByPost(ctx, postID, pagination.New(page, pagination.DefaultPageSize))
}

// DeleteReply allows the replier or the parent post's owner to remove a reply.
func (s *PostService) DeleteReply(ctx context.Context, replyID, callerID string) error {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.ReplierID != callerID && reply.PosterID != callerID {
		return models.NewForbiddenError("only the replier or the post owner can delete a reply")
	}

	_, err = s.replyRepo.Delete(ctx, replyID)
	return err
}

func (s *PostService) SetPostLike(ctx context.Context, postID, userID string, action models.LikeAction) error {
	if action != models.LikeAdd && action != models.LikeRemove {
		return models.NewValidationError("action must be \"add\" or \"remove\"")
	}
	return s.likeRepo.SetPostLike(ctx, postID, userID, action)
}

func (s *PostService) SetReplyLike(ctx context.Context, replyID, userID string, action models.LikeAction) error {
	if action != models.LikeAdd && action != models.LikeRemove {
		return models.NewValidationError("action must be \"add\" or \"remove\"")
	}
	return s.likeRepo.SetReplyLike(ctx, replyID, userID, action)
}

func (s *PostService) LikedPosts(ctx context.Context, userID string) ([]string, error) {
	return s.likeRepo.LikedTargetIDs(ctx, userID)
}

// RecountPost rebuilds the post's counters from its relation tables.
func (s *PostService) RecountPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.postRepo.RecomputeCounters(ctx, postID)
}

func (s *PostService) releaseRefs(ctx context.Context, refs []media.Ref) {
	if s.provider == nil {
		return
	}
	for _, ref := range refs {
		if err := s.provider.Release(ctx, ref.PublicID, ref.Type); err != nil {
			middleware.MediaReleaseFailures.WithLabelValues(ref.Type).Inc()
			middleware.Logger.ErrorContext(ctx, "media release failed",
				slog.String("public_id", ref.PublicID),
				slog.String("resource_type", ref.Type),
				slog.String("error", err.Error()),
			)
		}
	}
}
