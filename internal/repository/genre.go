package repository

import (
	"context"
	"strings"

	"critique/internal/models"

	"gorm.io/gorm"
)

// GenreRepository defines persistence operations for genres.
type GenreRepository interface {
	List(ctx context.Context, search string, limit, offset int) ([]models.Genre, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	// GetBySlugs returns the genres that exist among slugs, in no particular order.
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, genre *models.Genre) error
	// DeleteBySlug removes the genre and detaches it from every title.
	DeleteBySlug(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

// NewGenreRepository creates a new GenreRepository
func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) List(ctx context.Context, search string, limit, offset int) ([]models.Genre, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Genre{})
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(search))
	}

	var genres []models.Genre
	total, err := paginate(q, limit, offset, &genres, func(tx *gorm.DB) *gorm.DB {
		return tx.Order("name").Order("id")
	})
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return genres, total, nil
}

func (r *genreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error; err != nil {
		return nil, notFoundOr(err, "Genre", slug)
	}
	return &genre, nil
}

func (r *genreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	genres := []models.Genre{}
	if len(slugs) == 0 {
		return genres, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&genres).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return genres, nil
}

func (r *genreRepository) Create(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		if isUniqueConstraintError(err) {
			return uniqueViolation(err, "A genre with this slug or name already exists", "slug", "name")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *genreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var genre models.Genre
		if err := tx.Where("slug = ?", slug).First(&genre).Error; err != nil {
			return notFoundOr(err, "Genre", slug)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", genre.ID).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&genre).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}
