package server

import (
	"critique/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignUp handles POST /api/v1/auth/signup
// @Summary Register or resend a confirmation code
// @Description Registers a username and email and mails a confirmation code. Repeating the exact pair sends the code again.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignUpInput true "Signup request"
// @Success 200 {object} object{username=string,email=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) SignUp(c *fiber.Ctx) error {
	var req service.SignUpInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.authService.SignUp(c.UserContext(), req)
	if err != nil {
		return s.respond(c, err)
	}

	return c.JSON(fiber.Map{
		"username": user.Username,
		"email":    user.Email,
	})
}

// Token handles POST /api/v1/auth/token
// @Summary Exchange a confirmation code for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.TokenInput true "Token request"
// @Success 200 {object} object{token=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/token [post]
func (s *Server) Token(c *fiber.Ctx) error {
	var req service.TokenInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	token, err := s.authService.Token(c.UserContext(), req)
	if err != nil {
		return s.respond(c, err)
	}

	return c.JSON(fiber.Map{"token": token})
}
