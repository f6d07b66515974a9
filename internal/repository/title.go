package repository

import (
	"context"
	"strings"

	"critique/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows title listings. Zero fields do not filter.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         *int
}

// ScoreStats is the review aggregate of one title.
type ScoreStats struct {
	TitleID uint
	Total   int64
	Count   int64 `gorm:"column:reviews"`
}

// TitleRepository defines persistence operations for titles.
type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, limit, offset int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Title, error)
	Exists(ctx context.Context, id uint) error
	// Create inserts the title and links it to the given, already persisted genres.
	Create(ctx context.Context, title *models.Title, genreIDs []uint) error
	// Update writes scalar fields and category; genreIDs replaces the genre set when non-nil.
	Update(ctx context.Context, title *models.Title, genreIDs []uint) error
	// Delete removes the title with its reviews and their comments.
	Delete(ctx context.Context, id uint) error
	// ScoreStats aggregates review scores per title; titles without reviews are absent.
	ScoreStats(ctx context.Context, titleIDs []uint) (map[uint]ScoreStats, error)
}

type titleRepository struct {
	db *gorm.DB
}

// NewTitleRepository creates a new TitleRepository
func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Category").Preload("Genres", func(db *gorm.DB) *gorm.DB {
		return db.Order("genres.name")
	})
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, limit, offset int) ([]models.Title, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Title{})

	if filter.CategorySlug != "" {
		q = q.Where("category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("slug = ?", filter.CategorySlug))
	}
	if filter.GenreSlug != "" {
		q = q.Where("id IN (?)",
			r.db.Table("title_genres").
				Select("title_genres.title_id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("genres.slug = ?", filter.GenreSlug))
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(name))
	}
	if filter.Year != nil {
		q = q.Where("year = ?", *filter.Year)
	}

	var titles []models.Title
	total, err := paginate(q, limit, offset, &titles, func(tx *gorm.DB) *gorm.DB {
		return withRelations(tx).Order("id")
	})
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	for i := range titles {
		normalizeGenres(&titles[i])
	}
	return titles, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id uint) (*models.Title, error) {
	var title models.Title
	if err := withRelations(r.db.WithContext(ctx)).First(&title, id).Error; err != nil {
		return nil, notFoundOr(err, "Title", id)
	}
	normalizeGenres(&title)
	return &title, nil
}

func (r *titleRepository) Exists(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("Title", id)
	}
	return nil
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title, genreIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(title).Error; err != nil {
			return models.NewInternalError(err)
		}
		return linkGenres(tx, title.ID, genreIDs)
	})
}

func (r *titleRepository) Update(ctx context.Context, title *models.Title, genreIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Title{}).Where("id = ?", title.ID).Updates(map[string]interface{}{
			"name":        title.Name,
			"year":        title.Year,
			"description": title.Description,
			"category_id": title.CategoryID,
		})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Title", title.ID)
		}
		if genreIDs == nil {
			return nil
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", title.ID).Error; err != nil {
			return models.NewInternalError(err)
		}
		return linkGenres(tx, title.ID, genreIDs)
	})
}

func linkGenres(tx *gorm.DB, titleID uint, genreIDs []uint) error {
	if len(genreIDs) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(genreIDs))
	seen := make(map[uint]struct{}, len(genreIDs))
	for _, id := range genreIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, map[string]interface{}{"title_id": titleID, "genre_id": id})
	}
	if err := tx.Table("title_genres").Create(&rows).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Title{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Title", id)
		}
		return nil
	})
}

func (r *titleRepository) ScoreStats(ctx context.Context, titleIDs []uint) (map[uint]ScoreStats, error) {
	out := make(map[uint]ScoreStats, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}

	var rows []ScoreStats
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, SUM(score) AS total, COUNT(*) AS reviews").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.TitleID] = row
	}
	return out, nil
}

func normalizeGenres(t *models.Title) {
	if t.Genres == nil {
		t.Genres = []models.Genre{}
	}
}
