package service

import (
	"context"

	"critique/internal/models"
	"critique/internal/observability"
	"critique/internal/policy"
	"critique/internal/repository"
	"critique/internal/validation"
)

// ReviewService manages reviews nested under titles.
type ReviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
}

type CreateReviewInput struct {
	Text  string `json:"text" validate:"required,notblank"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

type UpdateReviewInput struct {
	Text  *string `json:"text" validate:"omitempty,notblank"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

func NewReviewService(reviews repository.ReviewRepository, titles repository.TitleRepository) *ReviewService {
	return &ReviewService{reviews: reviews, titles: titles}
}

// ResolveReview loads reviewID only if it exists under titleID. A review that
// belongs to another title is reported as not found.
func (s *ReviewService) ResolveReview(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	if err := s.titles.Exists(ctx, titleID); err != nil {
		return nil, err
	}
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, models.NewNotFoundError("Review", reviewID)
	}
	return review, nil
}

// AuthorizeCreate checks that actor may post a review under titleID.
func (s *ReviewService) AuthorizeCreate(ctx context.Context, actor policy.Principal, titleID uint) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	return s.titles.Exists(ctx, titleID)
}

// AuthorizeModify resolves the review and checks that actor may edit or
// delete it.
func (s *ReviewService) AuthorizeModify(ctx context.Context, actor policy.Principal, titleID, reviewID uint) (*models.Review, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	review, err := s.ResolveReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrStaff(actor, review.AuthorID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID uint, limit, offset int) ([]models.Review, int64, error) {
	if err := s.titles.Exists(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviews.ListByTitle(ctx, titleID, limit, offset)
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	return s.ResolveReview(ctx, titleID, reviewID)
}

// CreateReview stores the caller's review of titleID. Author and title come
// from the caller and the path, never from the payload.
func (s *ReviewService) CreateReview(ctx context.Context, actor policy.Principal, titleID uint, in CreateReviewInput) (*models.Review, error) {
	ctx, span := observability.StartSpan(ctx, "reviews", "create")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if err = s.AuthorizeCreate(ctx, actor, titleID); err != nil {
		return nil, err
	}
	if err = validation.Struct(in); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		err = models.NewFieldError("non_field_errors", "You have already reviewed this title")
		return nil, err
	}

	review := &models.Review{TitleID: titleID, AuthorID: actor.UserID, Text: in.Text, Score: in.Score}
	// a concurrent duplicate still lands on the unique index
	if err = s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("review", "create").Inc()
	return s.reviews.GetByID(ctx, review.ID)
}

func (s *ReviewService) UpdateReview(ctx context.Context, actor policy.Principal, titleID, reviewID uint, in UpdateReviewInput) (*models.Review, error) {
	review, err := s.AuthorizeModify(ctx, actor, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.Text != nil {
		review.Text = *in.Text
	}
	if in.Score != nil {
		review.Score = *in.Score
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("review", "update").Inc()
	return s.reviews.GetByID(ctx, review.ID)
}

func (s *ReviewService) DeleteReview(ctx context.Context, actor policy.Principal, titleID, reviewID uint) error {
	review, err := s.AuthorizeModify(ctx, actor, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return err
	}
	observability.ContentWrites.WithLabelValues("review", "delete").Inc()
	return nil
}
