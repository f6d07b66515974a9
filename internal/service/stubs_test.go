package service

import (
	"context"
	"errors"
	"testing"

	"critique/internal/models"
	"critique/internal/policy"
	"critique/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	anonymous = policy.Principal{}
	plainUser = policy.Principal{UserID: 10, Role: models.RoleUser}
	otherUser = policy.Principal{UserID: 11, Role: models.RoleUser}
	moderator = policy.Principal{UserID: 20, Role: models.RoleModerator}
	admin     = policy.Principal{UserID: 30, Role: models.RoleAdmin}
	superuser = policy.Principal{UserID: 40, Role: models.RoleUser, IsSuperuser: true}
)

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	findConflictsFn func(context.Context, string, string) ([]models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, string, int, int) ([]models.User, int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) FindConflicts(ctx context.Context, username, email string) ([]models.User, error) {
	if s.findConflictsFn == nil {
		return nil, nil
	}
	return s.findConflictsFn(ctx, username, email)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, u)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, u)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, search string, limit, offset int) ([]models.User, int64, error) {
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(ctx, search, limit, offset)
}

type titleRepoStub struct {
	listFn       func(context.Context, repository.TitleFilter, int, int) ([]models.Title, int64, error)
	getByIDFn    func(context.Context, uint) (*models.Title, error)
	existsFn     func(context.Context, uint) error
	createFn     func(context.Context, *models.Title, []uint) error
	updateFn     func(context.Context, *models.Title, []uint) error
	deleteFn     func(context.Context, uint) error
	scoreStatsFn func(context.Context, []uint) (map[uint]repository.ScoreStats, error)
}

func (s *titleRepoStub) List(ctx context.Context, f repository.TitleFilter, limit, offset int) ([]models.Title, int64, error) {
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(ctx, f, limit, offset)
}
func (s *titleRepoStub) GetByID(ctx context.Context, id uint) (*models.Title, error) {
	if s.getByIDFn == nil {
		return &models.Title{ID: id, Genres: []models.Genre{}}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *titleRepoStub) Exists(ctx context.Context, id uint) error {
	if s.existsFn == nil {
		return nil
	}
	return s.existsFn(ctx, id)
}
func (s *titleRepoStub) Create(ctx context.Context, t *models.Title, genreIDs []uint) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, t, genreIDs)
}
func (s *titleRepoStub) Update(ctx context.Context, t *models.Title, genreIDs []uint) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, t, genreIDs)
}
func (s *titleRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *titleRepoStub) ScoreStats(ctx context.Context, ids []uint) (map[uint]repository.ScoreStats, error) {
	if s.scoreStatsFn == nil {
		return map[uint]repository.ScoreStats{}, nil
	}
	return s.scoreStatsFn(ctx, ids)
}

type genreRepoStub struct {
	genres   []models.Genre
	createFn func(context.Context, *models.Genre) error
	deleteFn func(context.Context, string) error
}

func (s *genreRepoStub) List(_ context.Context, _ string, _, _ int) ([]models.Genre, int64, error) {
	return s.genres, int64(len(s.genres)), nil
}
func (s *genreRepoStub) GetBySlug(_ context.Context, slug string) (*models.Genre, error) {
	for i := range s.genres {
		if s.genres[i].Slug == slug {
			return &s.genres[i], nil
		}
	}
	return nil, models.NewNotFoundError("Genre", slug)
}
func (s *genreRepoStub) GetBySlugs(_ context.Context, slugs []string) ([]models.Genre, error) {
	out := []models.Genre{}
	for _, g := range s.genres {
		for _, slug := range slugs {
			if g.Slug == slug {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}
func (s *genreRepoStub) Create(ctx context.Context, g *models.Genre) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, g)
}
func (s *genreRepoStub) DeleteBySlug(ctx context.Context, slug string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, slug)
}

type categoryRepoStub struct {
	categories []models.Category
	createFn   func(context.Context, *models.Category) error
	deleteFn   func(context.Context, string) error
}

func (s *categoryRepoStub) List(_ context.Context, _ string, _, _ int) ([]models.Category, int64, error) {
	return s.categories, int64(len(s.categories)), nil
}
func (s *categoryRepoStub) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	for i := range s.categories {
		if s.categories[i].Slug == slug {
			return &s.categories[i], nil
		}
	}
	return nil, models.NewNotFoundError("Category", slug)
}
func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) DeleteBySlug(ctx context.Context, slug string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, slug)
}

type reviewRepoStub struct {
	listByTitleFn     func(context.Context, uint, int, int) ([]models.Review, int64, error)
	getByIDFn         func(context.Context, uint) (*models.Review, error)
	existsForAuthorFn func(context.Context, uint, uint) (bool, error)
	createFn          func(context.Context, *models.Review) error
	updateFn          func(context.Context, *models.Review) error
	deleteFn          func(context.Context, uint) error
}

func (s *reviewRepoStub) ListByTitle(ctx context.Context, titleID uint, limit, offset int) ([]models.Review, int64, error) {
	if s.listByTitleFn == nil {
		return nil, 0, nil
	}
	return s.listByTitleFn(ctx, titleID, limit, offset)
}
func (s *reviewRepoStub) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Review", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *reviewRepoStub) ExistsForAuthor(ctx context.Context, titleID, authorID uint) (bool, error) {
	if s.existsForAuthorFn == nil {
		return false, nil
	}
	return s.existsForAuthorFn(ctx, titleID, authorID)
}
func (s *reviewRepoStub) Create(ctx context.Context, r *models.Review) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, r)
}
func (s *reviewRepoStub) Update(ctx context.Context, r *models.Review) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, r)
}
func (s *reviewRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

type commentRepoStub struct {
	listByReviewFn func(context.Context, uint, int, int) ([]models.Comment, int64, error)
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	createFn       func(context.Context, *models.Comment) error
	updateFn       func(context.Context, *models.Comment) error
	deleteFn       func(context.Context, uint) error
}

func (s *commentRepoStub) ListByReview(ctx context.Context, reviewID uint, limit, offset int) ([]models.Comment, int64, error) {
	if s.listByReviewFn == nil {
		return nil, 0, nil
	}
	return s.listByReviewFn(ctx, reviewID, limit, offset)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

type mailerStub struct {
	sent []string
	err  error
}

func (m *mailerStub) Send(_ context.Context, to, _, body string) error {
	m.sent = append(m.sent, to+"|"+body)
	return m.err
}
