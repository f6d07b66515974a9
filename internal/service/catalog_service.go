package service

import (
	"context"
	"fmt"

	"critique/internal/models"
	"critique/internal/observability"
	"critique/internal/policy"
	"critique/internal/repository"
	"critique/internal/validation"
)

// CatalogService manages titles, genres and categories. Reads are public;
// every write requires an admin.
type CatalogService struct {
	titles     repository.TitleRepository
	genres     repository.GenreRepository
	categories repository.CategoryRepository
}

// TaxonInput creates a genre or a category.
type TaxonInput struct {
	Name string `json:"name" validate:"required,notblank,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// CreateTitleInput references its category and genres by slug.
type CreateTitleInput struct {
	Name        string   `json:"name" validate:"required,notblank,max=256"`
	Year        int      `json:"year" validate:"required,pastyear"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genre       []string `json:"genre"`
}

// UpdateTitleInput is a partial update; nil fields are left alone.
// A non-nil empty Category clears the category.
type UpdateTitleInput struct {
	Name        *string   `json:"name" validate:"omitempty,notblank,max=256"`
	Year        *int      `json:"year" validate:"omitempty,pastyear"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

func NewCatalogService(
	titles repository.TitleRepository,
	genres repository.GenreRepository,
	categories repository.CategoryRepository,
) *CatalogService {
	return &CatalogService{titles: titles, genres: genres, categories: categories}
}

func (s *CatalogService) ListTitles(ctx context.Context, filter repository.TitleFilter, limit, offset int) ([]models.Title, int64, error) {
	titles, total, err := s.titles.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachRatings(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id uint) (*models.Title, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	one := []models.Title{*title}
	if err := s.attachRatings(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// AuthorizeWrite is the class-level admin check shared by every catalog write.
func (s *CatalogService) AuthorizeWrite(actor policy.Principal, action policy.Action) error {
	return requireRole(actor, policy.Catalog, action)
}

// AuthorizeTitleUpdate runs the access checks of UpdateTitle without touching
// the payload: admin role, then existence of the title.
func (s *CatalogService) AuthorizeTitleUpdate(ctx context.Context, actor policy.Principal, id uint) error {
	if err := s.AuthorizeWrite(actor, policy.Modify); err != nil {
		return err
	}
	return s.titles.Exists(ctx, id)
}

func (s *CatalogService) CreateTitle(ctx context.Context, actor policy.Principal, in CreateTitleInput) (*models.Title, error) {
	ctx, span := observability.StartSpan(ctx, "catalog", "create_title")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if err = s.AuthorizeWrite(actor, policy.Create); err != nil {
		return nil, err
	}
	if err = validation.Struct(in); err != nil {
		return nil, err
	}

	title := &models.Title{Name: in.Name, Year: in.Year, Description: in.Description}
	if title.CategoryID, err = s.resolveCategory(ctx, in.Category); err != nil {
		return nil, err
	}
	genreIDs, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}
	if err = s.titles.Create(ctx, title, genreIDs); err != nil {
		return nil, err
	}
	return s.GetTitle(ctx, title.ID)
}

func (s *CatalogService) UpdateTitle(ctx context.Context, actor policy.Principal, id uint, in UpdateTitleInput) (*models.Title, error) {
	if err := s.AuthorizeWrite(actor, policy.Modify); err != nil {
		return nil, err
	}
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.Name != nil {
		title.Name = *in.Name
	}
	if in.Year != nil {
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = *in.Description
	}
	if in.Category != nil {
		if title.CategoryID, err = s.resolveCategory(ctx, *in.Category); err != nil {
			return nil, err
		}
	}

	var genreIDs []uint
	if in.Genre != nil {
		if genreIDs, err = s.resolveGenres(ctx, *in.Genre); err != nil {
			return nil, err
		}
	}
	if err := s.titles.Update(ctx, title, genreIDs); err != nil {
		return nil, err
	}
	return s.GetTitle(ctx, id)
}

func (s *CatalogService) DeleteTitle(ctx context.Context, actor policy.Principal, id uint) error {
	if err := s.AuthorizeWrite(actor, policy.Modify); err != nil {
		return err
	}
	return s.titles.Delete(ctx, id)
}

func (s *CatalogService) resolveCategory(ctx context.Context, slug string) (*uint, error) {
	if slug == "" {
		return nil, nil
	}
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewFieldError("category", fmt.Sprintf("Object with slug=%s does not exist.", slug))
		}
		return nil, err
	}
	return &category.ID, nil
}

// resolveGenres maps slugs to ids in request order. The result is never nil,
// so an empty list clears the genre set on update.
func (s *CatalogService) resolveGenres(ctx context.Context, slugs []string) ([]uint, error) {
	ids := make([]uint, 0, len(slugs))
	if len(slugs) == 0 {
		return ids, nil
	}

	genres, err := s.genres.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]uint, len(genres))
	for _, g := range genres {
		bySlug[g.Slug] = g.ID
	}

	var missing *models.AppError
	for _, slug := range slugs {
		id, ok := bySlug[slug]
		if !ok {
			msg := fmt.Sprintf("Object with slug=%s does not exist.", slug)
			if missing == nil {
				missing = models.NewValidationError(msg)
			}
			missing.WithField("genre", msg)
			continue
		}
		ids = append(ids, id)
	}
	if missing != nil {
		return nil, missing
	}
	return ids, nil
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, limit, offset int) ([]models.Genre, int64, error) {
	return s.genres.List(ctx, search, limit, offset)
}

func (s *CatalogService) CreateGenre(ctx context.Context, actor policy.Principal, in TaxonInput) (*models.Genre, error) {
	if err := s.AuthorizeWrite(actor, policy.Create); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	genre := &models.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, actor policy.Principal, slug string) error {
	if err := s.AuthorizeWrite(actor, policy.Modify); err != nil {
		return err
	}
	return s.genres.DeleteBySlug(ctx, slug)
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, limit, offset int) ([]models.Category, int64, error) {
	return s.categories.List(ctx, search, limit, offset)
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor policy.Principal, in TaxonInput) (*models.Category, error) {
	if err := s.AuthorizeWrite(actor, policy.Create); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name, Slug: in.Slug}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, actor policy.Principal, slug string) error {
	if err := s.AuthorizeWrite(actor, policy.Modify); err != nil {
		return err
	}
	return s.categories.DeleteBySlug(ctx, slug)
}
