package server

import (
	"critique/internal/service"

	"github.com/gofiber/fiber/v2"
)

// reviewPath parses the title and review ids of a nested route.
func (s *Server) reviewPath(c *fiber.Ctx) (titleID, reviewID uint, err error) {
	if titleID, err = s.parseID(c, "titleId"); err != nil {
		return 0, 0, err
	}
	if reviewID, err = s.parseID(c, "reviewId"); err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}

// ListReviews handles GET /api/v1/titles/:titleId/reviews
// @Summary List a title's reviews
// @Tags reviews
// @Produce json
// @Param titleId path int true "Title ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.Review]
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews [get]
func (s *Server) ListReviews(c *fiber.Ctx) error {
	titleID, err := s.parseID(c, "titleId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, s.config.DefaultPageSize)
	reviews, total, err := s.reviewService.ListReviews(c.UserContext(), titleID, page.Limit, page.Offset)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(pageOf(c, page, total, reviews))
}

// GetReview handles GET /api/v1/titles/:titleId/reviews/:reviewId
// @Summary Get a review
// @Tags reviews
// @Produce json
// @Param titleId path int true "Title ID"
// @Param reviewId path int true "Review ID"
// @Success 200 {object} models.Review
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews/{reviewId} [get]
func (s *Server) GetReview(c *fiber.Ctx) error {
	titleID, reviewID, err := s.reviewPath(c)
	if err != nil {
		return nil
	}
	review, err := s.reviewService.GetReview(c.UserContext(), titleID, reviewID)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(review)
}

// CreateReview handles POST /api/v1/titles/:titleId/reviews
// @Summary Review a title
// @Description Each user may review a title once.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param titleId path int true "Title ID"
// @Param request body service.CreateReviewInput true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	titleID, err := s.parseID(c, "titleId")
	if err != nil {
		return nil
	}
	var req service.CreateReviewInput
	if err := s.bindBody(c, &req, func() error {
		return s.reviewService.AuthorizeCreate(c.UserContext(), principal(c), titleID)
	}); err != nil {
		return nil
	}
	review, err := s.reviewService.CreateReview(c.UserContext(), principal(c), titleID, req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// UpdateReview handles PATCH /api/v1/titles/:titleId/reviews/:reviewId
// @Summary Edit a review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param titleId path int true "Title ID"
// @Param reviewId path int true "Review ID"
// @Param request body service.UpdateReviewInput true "Changes"
// @Success 200 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews/{reviewId} [patch]
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	titleID, reviewID, err := s.reviewPath(c)
	if err != nil {
		return nil
	}
	var req service.UpdateReviewInput
	if err := s.bindBody(c, &req, func() error {
		_, err := s.reviewService.AuthorizeModify(c.UserContext(), principal(c), titleID, reviewID)
		return err
	}); err != nil {
		return nil
	}
	review, err := s.reviewService.UpdateReview(c.UserContext(), principal(c), titleID, reviewID, req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(review)
}

// DeleteReview handles DELETE /api/v1/titles/:titleId/reviews/:reviewId
// @Summary Delete a review and its comments
// @Tags reviews
// @Security BearerAuth
// @Param titleId path int true "Title ID"
// @Param reviewId path int true "Review ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews/{reviewId} [delete]
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	titleID, reviewID, err := s.reviewPath(c)
	if err != nil {
		return nil
	}
	if err := s.reviewService.DeleteReview(c.UserContext(), principal(c), titleID, reviewID); err != nil {
		return s.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
