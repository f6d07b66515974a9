// Package seed creates demo data for development and tests.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"critique/internal/models"
	"critique/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them through the repositories.
type Factory struct {
	users    repository.UserRepository
	titles   repository.TitleRepository
	reviews  repository.ReviewRepository
	comments repository.CommentRepository
	faker    *gofakeit.Faker
}

// NewFactory binds a factory to db. A zero seed picks a time-based one.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		users:    repository.NewUserRepository(db),
		titles:   repository.NewTitleRepository(db),
		reviews:  repository.NewReviewRepository(db),
		comments: repository.NewCommentRepository(db),
		faker:    gofakeit.New(seed),
	}
}

// CreateUser persists a user with fake profile fields. Overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	suffix := f.faker.Number(1000, 9999)
	user := &models.User{
		Username:      fmt.Sprintf("%s%d", f.faker.Username(), suffix),
		Email:         strings.ToLower(fmt.Sprintf("%d.%s", suffix, f.faker.Email())),
		FirstName:     f.faker.FirstName(),
		LastName:      f.faker.LastName(),
		Bio:           f.faker.Sentence(10),
		Role:          models.RoleUser,
		SecurityStamp: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTitle persists a title in category with the given genres.
func (f *Factory) CreateTitle(ctx context.Context, category *models.Category, genres []models.Genre) (*models.Title, error) {
	title := &models.Title{
		Name:        strings.TrimSuffix(f.faker.Sentence(f.faker.Number(1, 4)), "."),
		Year:        f.faker.Number(1920, time.Now().Year()),
		Description: f.faker.Paragraph(1, 3, 12, " "),
	}
	if category != nil {
		title.CategoryID = &category.ID
	}

	ids := make([]uint, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	if err := f.titles.Create(ctx, title, ids); err != nil {
		return nil, err
	}
	return title, nil
}

// CreateReview persists a review of title by author with a random score.
func (f *Factory) CreateReview(ctx context.Context, title *models.Title, author *models.User) (*models.Review, error) {
	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     f.faker.Paragraph(1, 2, 10, " "),
		Score:    f.faker.Number(models.MinScore, models.MaxScore),
	}
	if err := f.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// CreateComment persists a comment on review by author.
func (f *Factory) CreateComment(ctx context.Context, review *models.Review, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: author.ID,
		Text:     f.faker.Sentence(f.faker.Number(4, 16)),
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
