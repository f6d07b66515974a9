package server

import (
	"critique/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/v1/titles/:titleId/reviews/:reviewId/comments
// @Summary List a review's comments
// @Tags comments
// @Produce json
// @Param titleId path int true "Title ID"
// @Param reviewId path int true "Review ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.Comment]
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews/{reviewId}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	titleID, reviewID, err := s.reviewPath(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, s.config.DefaultPageSize)
	comments, total, err := s.commentService.ListComments(c.UserContext(), titleID, reviewID, page.Limit, page.Offset)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(pageOf(c, page, total, comments))
}

// GetComment handles GET /api/v1/titles/:titleId/reviews/:reviewId/comments/:commentId
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Param titleId path int true "Title ID"
// @Param reviewId path int true "Review ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews/{reviewId}/comments/{commentId} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	titleID, reviewID, err := s.reviewPath(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), titleID, reviewID, commentID)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/v1/titles/:titleId/reviews/:reviewId/comments
// @Summary Comment on a review
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param titleId path int true "Title ID"
// @Param reviewId path int true "Review ID"
// @Param request body service.CommentInput true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews/{reviewId}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	titleID, reviewID, err := s.reviewPath(c)
	if err != nil {
		return nil
	}
	var req service.CommentInput
	if err := s.bindBody(c, &req, func() error {
		return s.commentService.AuthorizeCreate(c.UserContext(), principal(c), titleID, reviewID)
	}); err != nil {
		return nil
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), principal(c), titleID, reviewID, req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PATCH /api/v1/titles/:titleId/reviews/:reviewId/comments/:commentId
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param titleId path int true "Title ID"
// @Param reviewId path int true "Review ID"
// @Param commentId path int true "Comment ID"
// @Param request body service.CommentInput true "Comment"
// @Success 200 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews/{reviewId}/comments/{commentId} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	titleID, reviewID, err := s.reviewPath(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req service.CommentInput
	if err := s.bindBody(c, &req, func() error {
		_, err := s.commentService.AuthorizeModify(c.UserContext(), principal(c), titleID, reviewID, commentID)
		return err
	}); err != nil {
		return nil
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), principal(c), titleID, reviewID, commentID, req)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/v1/titles/:titleId/reviews/:reviewId/comments/:commentId
// @Summary Delete a comment
// @Tags comments
// @Security BearerAuth
// @Param titleId path int true "Title ID"
// @Param reviewId path int true "Review ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /titles/{titleId}/reviews/{reviewId}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	titleID, reviewID, err := s.reviewPath(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), principal(c), titleID, reviewID, commentID); err != nil {
		return s.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
