package server

import (
	"warble/internal/models"
	"warble/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserPosts handles GET /api/users/:userId/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}

	feed, err2 := s.postService.GetUserPosts(c.UserContext(), userID, parsePage(c))
	if err2 != nil {
		return respondServiceError(c, err2)
	}
	return c.JSON(feed)
}

// GetFollowTally handles GET /api/users/:userId/follows
func (s *Server) GetFollowTally(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}

	tally, err2 := s.userService.FollowTally(c.UserContext(), userID)
	if err2 != nil {
		return respondServiceError(c, err2)
	}
	return c.JSON(tally)
}

// GetConnections handles GET /api/users/:userId/connections
func (s *Server) GetConnections(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}

	conns, err2 := s.userService.Connections(c.UserContext(), userID)
	if err2 != nil {
		return respondServiceError(c, err2)
	}
	return c.JSON(conns)
}

// GetContentTotals handles GET /api/users/:userId/totals
func (s *Server) GetContentTotals(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}

	totals, err2 := s.userService.ContentTotals(c.UserContext(), userID)
	if err2 != nil {
		return respondServiceError(c, err2)
	}
	return c.JSON(totals)
}

// FollowUser handles POST /api/follows/:userId
func (s *Server) FollowUser(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.userService.Follow(c.UserContext(), currentUserID(c), userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser handles DELETE /api/follows/:userId
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.userService.Unfollow(c.UserContext(), currentUserID(c), userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteAccount(c.UserContext(), currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMyLikes handles GET /api/users/me/likes
func (s *Server) GetMyLikes(c *fiber.Ctx) error {
	ids, err := s.postService.LikedPosts(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"likedPostIds": ids})
}
