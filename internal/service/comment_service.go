package service

import (
	"context"

	"critique/internal/models"
	"critique/internal/observability"
	"critique/internal/policy"
	"critique/internal/repository"
	"critique/internal/validation"
)

// CommentService manages comments nested under title reviews.
type CommentService struct {
	comments repository.CommentRepository
	reviews  *ReviewService
}

type CommentInput struct {
	Text string `json:"text" validate:"required,notblank"`
}

func NewCommentService(comments repository.CommentRepository, reviews *ReviewService) *CommentService {
	return &CommentService{comments: comments, reviews: reviews}
}

// ResolveComment walks title, review and comment, requiring each link of the
// chain to match the path.
func (s *CommentService) ResolveComment(ctx context.Context, titleID, reviewID, commentID uint) (*models.Comment, error) {
	if _, err := s.reviews.ResolveReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.ReviewID != reviewID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

// AuthorizeCreate checks that actor may comment on the review at the path.
func (s *CommentService) AuthorizeCreate(ctx context.Context, actor policy.Principal, titleID, reviewID uint) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	_, err := s.reviews.ResolveReview(ctx, titleID, reviewID)
	return err
}

// AuthorizeModify resolves the comment and checks that actor may edit or
// delete it.
func (s *CommentService) AuthorizeModify(ctx context.Context, actor policy.Principal, titleID, reviewID, commentID uint) (*models.Comment, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	comment, err := s.ResolveComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrStaff(actor, comment.AuthorID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, titleID, reviewID uint, limit, offset int) ([]models.Comment, int64, error) {
	if _, err := s.reviews.ResolveReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListByReview(ctx, reviewID, limit, offset)
}

func (s *CommentService) GetComment(ctx context.Context, titleID, reviewID, commentID uint) (*models.Comment, error) {
	return s.ResolveComment(ctx, titleID, reviewID, commentID)
}

func (s *CommentService) CreateComment(ctx context.Context, actor policy.Principal, titleID, reviewID uint, in CommentInput) (*models.Comment, error) {
	if err := s.AuthorizeCreate(ctx, actor, titleID, reviewID); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	comment := &models.Comment{ReviewID: reviewID, AuthorID: actor.UserID, Text: in.Text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("comment", "create").Inc()
	return s.comments.GetByID(ctx, comment.ID)
}

func (s *CommentService) UpdateComment(ctx context.Context, actor policy.Principal, titleID, reviewID, commentID uint, in CommentInput) (*models.Comment, error) {
	comment, err := s.AuthorizeModify(ctx, actor, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	comment.Text = in.Text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("comment", "update").Inc()
	return s.comments.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, actor policy.Principal, titleID, reviewID, commentID uint) error {
	comment, err := s.AuthorizeModify(ctx, actor, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	observability.ContentWrites.WithLabelValues("comment", "delete").Inc()
	return nil
}
