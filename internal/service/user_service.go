package service

import (
	"context"
	"log/slog"

	"warble/internal/media"
	"warble/internal/middleware"
	"warble/internal/models"
	"warble/internal/repository"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	provider   media.Provider
}

type UpdateProfileInput struct {
	DisplayName            *string `json:"displayName"`
	BioText                *string `json:"bioText"`
	ProfilePicture         *string `json:"profilePicture"`
	ProfilePicturePublicID *string `json:"profilePicturePublicId"`
	HeaderPicture          *string `json:"headerPicture"`
	HeaderPicturePublicID  *string `json:"headerPicturePublicId"`
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	provider media.Provider,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		provider:   provider,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) ContentTotals(ctx context.Context, userID string) (*models.ContentTotals, error) {
	return s.userRepo.ContentTotals(ctx, userID)
}

// UpdateProfile persists the new profile and settles media assets afterwards.
// If the row update fails, the freshly uploaded assets are released so they
// do not leak; if it succeeds, the displaced previous assets are released.
// Either way the remote store converges on exactly the assets the row
// references.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	update := repository.ProfileUpdate{
		DisplayName:            in.DisplayName,
		BioText:                in.BioText,
		ProfilePicture:         in.ProfilePicture,
		ProfilePicturePublicID: in.ProfilePicturePublicID,
		HeaderPicture:          in.HeaderPicture,
		HeaderPicturePublicID:  in.HeaderPicturePublicID,
	}

	prev, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		s.releaseIDs(ctx, newUploadIDs(in))
		return nil, err
	}

	var displaced []string
	if in.ProfilePicturePublicID != nil && prev.ProfilePicturePublicID != "" &&
		prev.ProfilePicturePublicID != *in.ProfilePicturePublicID {
		displaced = append(displaced, prev.ProfilePicturePublicID)
	}
	if in.HeaderPicturePublicID != nil && prev.HeaderPicturePublicID != "" &&
		prev.HeaderPicturePublicID != *in.HeaderPicturePublicID {
		displaced = append(displaced, prev.HeaderPicturePublicID)
	}
	s.releaseIDs(ctx, displaced)

	return s.userRepo.GetByID(ctx, userID)
}

// DeleteAccount cascades the account delete and then releases every asset the
// account referenced: profile and header pictures plus each deleted post's
// media manifest.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, posts, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return err
	}

	var ids []string
	if user.ProfilePicturePublicID != "" {
		ids = append(ids, user.ProfilePicturePublicID)
	}
	if user.HeaderPicturePublicID != "" {
		ids = append(ids, user.HeaderPicturePublicID)
	}
	s.releaseIDs(ctx, ids)

	for _, post := range posts {
		s.releaseRefs(ctx, media.ParseManifest(post.MediaPublicID, post.MediaTypes))
	}
	return nil
}

func (s *UserService) Follow(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return models.NewValidationError("cannot follow yourself")
	}
	return s.followRepo.Follow(ctx, followerID, followedID)
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followedID string) error {
	return s.followRepo.Unfollow(ctx, followerID, followedID)
}

func (s *UserService) FollowTally(ctx context.Context, userID string) (*models.FollowTally, error) {
	return s.followRepo.Tally(ctx, userID)
}

func (s *UserService) Connections(ctx context.Context, userID string) (*models.Connections, error) {
	return s.followRepo.Connections(ctx, userID)
}

func newUploadIDs(in UpdateProfileInput) []string {
	var ids []string
	if in.ProfilePicturePublicID != nil && *in.ProfilePicturePublicID != "" {
		ids = append(ids, *in.ProfilePicturePublicID)
	}
	if in.HeaderPicturePublicID != nil && *in.HeaderPicturePublicID != "" {
		ids = append(ids, *in.HeaderPicturePublicID)
	}
	return ids
}

func (s *UserService) releaseIDs(ctx context.Context, publicIDs []string) {
	refs := make([]media.Ref, 0, len(publicIDs))
	for _, id := range publicIDs {
		refs = append(refs, media.Ref{PublicID: id, Type: "image"})
	}
	s.releaseRefs(ctx, refs)
}

func (s *UserService) releaseRefs(ctx context.Context, refs []media.Ref) {
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
