package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"critique/internal/middleware"
	"critique/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers          int
	NumTitles         int
	ReviewsPerTitle   int
	CommentsPerReview int
	Clean             bool
	// Seed makes the generated data reproducible; zero picks a random one.
	Seed int64
}

// Stats counts what a run created.
type Stats struct {
	Users    int
	Titles   int
	Reviews  int
	Comments int
}

// BuiltinCategories and BuiltinGenres are always present after Catalog runs.
var (
	BuiltinCategories = []models.Category{
		{Name: "Films", Slug: "films"},
		{Name: "Books", Slug: "books"},
		{Name: "Music", Slug: "music"},
	}

	BuiltinGenres = []models.Genre{
		{Name: "Drama", Slug: "drama"},
		{Name: "Comedy", Slug: "comedy"},
		{Name: "Thriller", Slug: "thriller"},
		{Name: "Science fiction", Slug: "sci-fi"},
		{Name: "Documentary", Slug: "documentary"},
		{Name: "Rock", Slug: "rock"},
		{Name: "Jazz", Slug: "jazz"},
		{Name: "Fantasy", Slug: "fantasy"},
	}
)

// Catalog inserts the built-in categories and genres, skipping existing slugs.
func Catalog(db *gorm.DB) error {
	categories := append([]models.Category(nil), BuiltinCategories...)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	genres := append([]models.Genre(nil), BuiltinGenres...)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&genres).Error; err != nil {
		return fmt.Errorf("seed genres: %w", err)
	}
	return nil
}

// Seeder populates a database with demo content.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes every row, children first.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"comments", "reviews", "title_genres", "titles", "genres", "categories", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Run seeds the built-in catalog and then fake users, titles, reviews and comments.
// Each title is reviewed by distinct users, so ReviewsPerTitle is capped at NumUsers.
func (s *Seeder) Run(ctx context.Context, opts Options) (Stats, error) {
	var stats Stats

	if opts.Clean {
		if err := s.ClearAll(); err != nil {
			return stats, err
		}
	}
	if err := Catalog(s.db.WithContext(ctx)); err != nil {
		return stats, err
	}

	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return stats, err
	}
	var genres []models.Genre
	if err := s.db.WithContext(ctx).Order("id").Find(&genres).Error; err != nil {
		return stats, err
	}

	f := NewFactory(s.db, opts.Seed)
	rng := rand.New(rand.NewSource(f.faker.Int64()))

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return stats, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	stats.Users = len(users)

	for i := 0; i < opts.NumTitles; i++ {
		var category *models.Category
		if len(categories) > 0 {
			category = &categories[rng.Intn(len(categories))]
		}
		title, err := f.CreateTitle(ctx, category, pickGenres(rng, genres))
		if err != nil {
			return stats, fmt.Errorf("create title: %w", err)
		}
		stats.Titles++

		n := min(opts.ReviewsPerTitle, len(users))
		for _, idx := range rng.Perm(len(users))[:n] {
			review, err := f.CreateReview(ctx, title, users[idx])
			if err != nil {
				return stats, fmt.Errorf("create review: %w", err)
			}
			stats.Reviews++

			for j := 0; j < opts.CommentsPerReview; j++ {
				author := users[rng.Intn(len(users))]
				if _, err := f.CreateComment(ctx, review, author); err != nil {
					return stats, fmt.Errorf("create comment: %w", err)
				}
				stats.Comments++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", stats.Users),
		slog.Int("titles", stats.Titles),
		slog.Int("reviews", stats.Reviews),
		slog.Int("comments", stats.Comments),
	)
	return stats, nil
}

// pickGenres returns up to three distinct genres.
func pickGenres(rng *rand.Rand, genres []models.Genre) []models.Genre {
	if len(genres) == 0 {
		return nil
	}
	n := rng.Intn(min(3, len(genres))) + 1
	picked := make([]models.Genre, 0, n)
	for _, idx := range rng.Perm(len(genres))[:n] {
		picked = append(picked, genres[idx])
	}
	return picked
}
