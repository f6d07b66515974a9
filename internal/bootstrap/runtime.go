// Package bootstrap prepares the database and cache before the server starts.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"critique/internal/cache"
	"critique/internal/config"
	"critique/internal/database"
	"critique/internal/middleware"
	"critique/internal/models"
	"critique/internal/seed"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedCatalog bool
}

// InitRuntime connects to DB and Redis and optionally seeds the built-in catalog.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// may leave a nil client when redis is unreachable
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureDevRootAdmin(context.Background(), cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedCatalog {
		if err := seed.Catalog(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in catalog: %w", err)
		}
	}

	return db, r, nil
}

// EnsureDevRootAdmin makes DEV_ROOT_USERNAME a superuser in development. The
// account is created when missing; it signs in through the normal
// confirmation-code flow like everyone else.
func EnsureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	username := strings.TrimSpace(cfg.DevRootUsername)
	if !strings.EqualFold(cfg.Env, "development") || username == "" {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevRootEmail))
	if email == "" {
		email = username + "@critique.local"
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("username = ?", username).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username:      username,
				Email:         email,
				Role:          models.RoleAdmin,
				IsSuperuser:   true,
				SecurityStamp: strings.ReplaceAll(uuid.NewString(), "-", ""),
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&root).Updates(map[string]any{
				"role":         models.RoleAdmin,
				"is_superuser": true,
			}).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "development root admin ensured", slog.String("username", username))
	return nil
}
