package repository

import (
	"testing"

	"critique/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// one connection keeps the in-memory database alive and shared
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

type fixture struct {
	db *gorm.DB
	t  *testing.T
}

func (f fixture) user(name string, role models.Role) *models.User {
	u := &models.User{Username: name, Email: name + "@example.com", Role: role}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f fixture) category(name, slug string) *models.Category {
	c := &models.Category{Name: name, Slug: slug}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f fixture) genre(name, slug string) *models.Genre {
	g := &models.Genre{Name: name, Slug: slug}
	require.NoError(f.t, f.db.Create(g).Error)
	return g
}

func (f fixture) title(name string, year int, category *models.Category, genres ...*models.Genre) *models.Title {
	t := &models.Title{Name: name, Year: year}
	if category != nil {
		t.CategoryID = &category.ID
	}
	ids := make([]uint, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	require.NoError(f.t, NewTitleRepository(f.db).Create(f.t.Context(), t, ids))
	return t
}

func (f fixture) review(title *models.Title, author *models.User, score int) *models.Review {
	r := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "review by " + author.Username, Score: score}
	require.NoError(f.t, NewReviewRepository(f.db).Create(f.t.Context(), r))
	return r
}

func (f fixture) comment(review *models.Review, author *models.User) *models.Comment {
	c := &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "comment by " + author.Username}
	require.NoError(f.t, NewCommentRepository(f.db).Create(f.t.Context(), c))
	return c
}
