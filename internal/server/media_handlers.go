package server

import (
	"warble/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SignUpload handles POST /api/media/sign. The client uploads directly to the
// media provider using the returned signature; only the configured folder is
// signed, so clients cannot place assets elsewhere.
func (s *Server) SignUpload(c *fiber.Ctx) error {
	if s.provider == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("media uploads are not configured"))
	}

	signed, err := s.provider.SignUpload(s.config.MediaFolder)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(signed)
}
