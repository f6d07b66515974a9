package database

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"critique/internal/config"
	"critique/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	pg := Dialector(&config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBName: "critique"})
	assert.Equal(t, "postgres", pg.Name())

	lite := Dialector(&config.Config{DBDriver: "sqlite", DBName: "x.db"})
	assert.Equal(t, "sqlite", lite.Name())
}

func TestConnectSQLiteMigrates(t *testing.T) {
	cfg := &config.Config{
		Env:      "test",
		DBDriver: "sqlite",
		DBName:   filepath.Join(t.TempDir(), "critique.db"),
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	for _, m := range models.AllModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasTable("title_genres"))
}

func TestGormLoggerLevels(t *testing.T) {
	l := NewGormLogger(slog.Default())
	silent := l.LogMode(logger.Silent)

	// silent mode must not invoke the SQL callback
	called := false
	silent.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "SELECT 1", 1
	}, nil)
	assert.False(t, called)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "SELECT 1", 0
	}, gorm.ErrRecordNotFound)
	assert.True(t, called)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT pg_sleep(1)", 0
	}, errors.New("boom"))
}
