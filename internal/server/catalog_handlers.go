package server

import (
	"strconv"

	"critique/internal/models"
	"critique/internal/repository"
	"critique/internal/policy"
	"critique/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListTitles handles GET /api/v1/titles
// @Summary List titles
// @Description Filters combine with AND. name is a substring match; category and genre match slugs.
// @Tags titles
// @Produce json
// @Param category query string false "Category slug"
// @Param genre query string false "Genre slug"
// @Param name query string false "Name substring"
// @Param year query int false "Release year"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.Title]
// @Failure 400 {object} models.ErrorResponse
// @Router /titles [get]
func (s *Server) ListTitles(c *fiber.Ctx) error {
	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return s.respond(c, models.NewFieldError("year", "Enter a whole number."))
		}
		filter.Year = &year
	}

	page := parsePagination(c, s.config.DefaultPageSize)
	titles, total, err := s.catalogService.ListTitles(c.UserContext(), filter, page.Limit, page.Offset)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(pageOf(c, page, total, titles))
}

// GetTitle handles GET /api/v1/titles/:titleId
// @Summary Get a title with its rating
// @Tags titles
// @Produce json
// @Param titleId path int true "Title ID"
// @Success 200 {object} models.Title
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId} [get]
func (s *Server) GetTitle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "titleId")
	if err != nil {
		return nil
	}
	title, err := s.catalogService.GetTitle(c.UserContext(), id)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(title)
}

// CreateTitle handles POST /api/v1/titles
// @Summary Create a title
// @Tags titles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateTitleInput true "Title"
// @Success 201 {object} models.Title
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /titles [post]
func (s *Server) CreateTitle(c *fiber.Ctx) error {
	var req service.CreateTitleInput
	if err := s.bindBody(c, &req, func() error {
		return s.catalogService.AuthorizeWrite(principal(c), policy.Create)
	}); err != nil {
		return nil
	}
	title, err := s.catalogService.CreateTitle(c.UserContext(), principal(c), req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(title)
}

// UpdateTitle handles PATCH /api/v1/titles/:titleId
// @Summary Partially update a title
// @Description A genre list replaces the current set. An empty category clears it.
// @Tags titles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param titleId path int true "Title ID"
// @Param request body service.UpdateTitleInput true "Changes"
// @Success 200 {object} models.Title
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId} [patch]
func (s *Server) UpdateTitle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "titleId")
	if err != nil {
		return nil
	}
	var req service.UpdateTitleInput
	if err := s.bindBody(c, &req, func() error {
		return s.catalogService.AuthorizeTitleUpdate(c.UserContext(), principal(c), id)
	}); err != nil {
		return nil
	}
	title, err := s.catalogService.UpdateTitle(c.UserContext(), principal(c), id, req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(title)
}

// DeleteTitle handles DELETE /api/v1/titles/:titleId
// @Summary Delete a title with its reviews and comments
// @Tags titles
// @Security BearerAuth
// @Param titleId path int true "Title ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId} [delete]
func (s *Server) DeleteTitle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "titleId")
	if err != nil {
		return nil
	}
	if err := s.catalogService.DeleteTitle(c.UserContext(), principal(c), id); err != nil {
		return s.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListGenres handles GET /api/v1/genres
// @Summary List genres
// @Tags genres
// @Produce json
// @Param search query string false "Name substring"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.Genre]
// @Router /genres [get]
func (s *Server) ListGenres(c *fiber.Ctx) error {
	page := parsePagination(c, s.config.DefaultPageSize)
	genres, total, err := s.catalogService.ListGenres(c.UserContext(), c.Query("search"), page.Limit, page.Offset)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(pageOf(c, page, total, genres))
}

// CreateGenre handles POST /api/v1/genres
// @Summary Create a genre
// @Tags genres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TaxonInput true "Genre"
// @Success 201 {object} models.Genre
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /genres [post]
func (s *Server) CreateGenre(c *fiber.Ctx) error {
	var req service.TaxonInput
	if err := s.bindBody(c, &req, func() error {
		return s.catalogService.AuthorizeWrite(principal(c), policy.Create)
	}); err != nil {
		return nil
	}
	genre, err := s.catalogService.CreateGenre(c.UserContext(), principal(c), req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(genre)
}

// DeleteGenre handles DELETE /api/v1/genres/:slug
// @Summary Delete a genre
// @Tags genres
// @Security BearerAuth
// @Param slug path string true "Genre slug"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /genres/{slug} [delete]
func (s *Server) DeleteGenre(c *fiber.Ctx) error {
	if err := s.catalogService.DeleteGenre(c.UserContext(), principal(c), c.Params("slug")); err != nil {
		return s.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCategories handles GET /api/v1/categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Param search query string false "Name substring"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.Category]
// @Router /categories [get]
func (s *Server) ListCategories(c *fiber.Ctx) error {
	page := parsePagination(c, s.config.DefaultPageSize)
	categories, total, err := s.catalogService.ListCategories(c.UserContext(), c.Query("search"), page.Limit, page.Offset)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(pageOf(c, page, total, categories))
}

// CreateCategory handles POST /api/v1/categories
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TaxonInput true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /categories [post]
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req service.TaxonInput
	if err := s.bindBody(c, &req, func() error {
		return s.catalogService.AuthorizeWrite(principal(c), policy.Create)
	}); err != nil {
		return nil
	}
	category, err := s.catalogService.CreateCategory(c.UserContext(), principal(c), req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// DeleteCategory handles DELETE /api/v1/categories/:slug
// @Summary Delete a category
// @Description Titles in the category are kept with no category.
// @Tags categories
// @Security BearerAuth
// @Param slug path string true "Category slug"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{slug} [delete]
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	if err := s.catalogService.DeleteCategory(c.UserContext(), principal(c), c.Params("slug")); err != nil {
		return s.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
