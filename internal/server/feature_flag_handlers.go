package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns the configured flags evaluated for the current user.
// @Summary Feature flag state
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{flags=map[string]bool}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	var subject string
	if user := currentUser(c); user != nil {
		subject = user.Email
	}

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{"flags": map[string]bool{}})
	}
	return c.JSON(fiber.Map{"flags": s.featureFlags.Snapshot(subject)})
}
