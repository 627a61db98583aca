package server

import (
	"warble/internal/media"
	"warble/internal/models"
	"warble/internal/service"

	"github.com/gofiber/fiber/v2"
)

type mediaItem struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Type     string `json:"type"`
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	feed, err := s.postService.GetFeed(c.UserContext(), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// GetPost handles GET /api/posts/:postId
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseUUIDParam(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		PostText string      `json:"postText"`
		Media    []mediaItem `json:"media"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	refs := make([]media.Ref, 0, len(req.Media))
	for _, m := range req.Media {
		refs = append(refs, media.Ref{URL: m.URL, PublicID: m.PublicID, Type: m.Type})
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   userID,
		PostText: req.PostText,
		Media:    refs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseUUIDParam(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), postID, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPostLike handles POST /api/posts/:postId/likes
func (s *Server) SetPostLike(c *fiber.Ctx) error {
	postID, err := s.parseUUIDParam(c, "postId")
	if err != nil {
		return nil
	}

	var req struct {
		Action models.LikeAction `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	if err := s.postService.SetPostLike(c.UserContext(), postID, currentUserID(c), req.Action); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetReplies handles GET /api/posts/:postId/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	postID, err := s.parseUUIDParam(c, "postId")
	if err != nil {
		return nil
	}

	page, err2 := s.postService.GetReplies(c.UserContext(), postID, parsePage(c))
	if err2 != nil {
		return respondServiceError(c, err2)
	}
	return c.JSON(page)
}

// CreateReply handles POST /api/posts/:postId/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	postID, err := s.parseUUIDParam(c, "postId")
	if err != nil {
		return nil
	}

	var req struct {
		PostText string `json:"postText"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	reply, err2 := s.postService.CreateReply(c.UserContext(), service.CreateReplyInput{
		PostID:    postID,
		ReplierID: currentUserID(c),
		PostText:  req.PostText,
	})
	if err2 != nil {
		return respondServiceError(c, err2)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// DeleteReply handles DELETE /api/replies/:replyId
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	replyID, err := s.parseUUIDParam(c, "replyId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteReply(c.UserContext(), replyID, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetReplyLike handles POST /api/replies/:replyId/likes
func (s *Server) SetReplyLike(c *fiber.Ctx) error {
	replyID, err := s.parseUUIDParam(c, "replyId")
	if err != nil {
		return nil
	}

	var req struct {
		Action models.LikeAction `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	if err := s.postService.SetReplyLike(c.UserContext(), replyID, currentUserID(c), req.Action); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecountPost handles POST /api/posts/:postId/recount
func (s *Server) RecountPost(c *fiber.Ctx) error {
	postID, err := s.parseUUIDParam(c, "postId")
	if err != nil {
		return nil
	}

	post, err2 := s.postService.RecountPost(c.UserContext(), postID)
	if err2 != nil {
		return respondServiceError(c, err2)
	}
	return c.JSON(post)
}
