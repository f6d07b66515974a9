package server

import (
	"critique/internal/policy"
	"critique/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/v1/users/me
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetMe(c.UserContext(), principal(c))
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(user)
}

// UpdateMe handles PATCH /api/v1/users/me
// @Summary Update the current user's profile
// @Description The role field is ignored.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateUserInput true "Changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [patch]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req service.UpdateUserInput
	if err := s.bindBody(c, &req, func() error {
		return s.userService.AuthorizeSelf(principal(c))
	}); err != nil {
		return nil
	}
	user, err := s.userService.UpdateMe(c.UserContext(), principal(c), req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(user)
}

// ListUsers handles GET /api/v1/users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Username substring"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.User]
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, s.config.DefaultPageSize)
	users, total, err := s.userService.ListUsers(c.UserContext(), principal(c), c.Query("search"), page.Limit, page.Offset)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(pageOf(c, page, total, users))
}

// CreateUser handles POST /api/v1/users
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateUserInput true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserInput
	if err := s.bindBody(c, &req, func() error {
		return s.userService.AuthorizeAdmin(principal(c), policy.Create)
	}); err != nil {
		return nil
	}
	user, err := s.userService.CreateUser(c.UserContext(), principal(c), req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser handles GET /api/v1/users/:username
// @Summary Get a user by username
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), principal(c), c.Params("username"))
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PATCH /api/v1/users/:username
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param request body service.UpdateUserInput true "Changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [patch]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	var req service.UpdateUserInput
	if err := s.bindBody(c, &req, func() error {
		_, err := s.userService.AuthorizeUpdate(c.UserContext(), principal(c), c.Params("username"))
		return err
	}); err != nil {
		return nil
	}
	user, err := s.userService.UpdateUser(c.UserContext(), principal(c), c.Params("username"), req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/v1/users/:username
// @Summary Delete a user with their reviews and comments
// @Tags users
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	if err := s.userService.DeleteUser(c.UserContext(), principal(c), c.Params("username")); err != nil {
		return s.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
