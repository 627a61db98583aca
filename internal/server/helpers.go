package server

import (
	"errors"

	"warble/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseUUIDParam extracts a route parameter that must be a UUID. On failure it
// writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseUUIDParam(c *fiber.Ctx, param string) (string, error) {
	value := c.Params(param)
	if _, err := uuid.Parse(value); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid "+param))
		return "", errResponseWritten
	}
	return value, nil
}

// parsePage reads the 1-indexed page query parameter.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// currentUserID returns the authenticated caller's id set by AuthRequired.
func currentUserID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok {
		return uid
	}
	return ""
}

// respondServiceError maps a service error onto the error taxonomy's status.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
