// Command migrate applies the schema. Production servers do not migrate on startup.
package main

import (
	"log"

	"critique/internal/config"
	"critique/internal/database"
	"critique/internal/middleware"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := gorm.Open(database.Dialector(cfg), &gorm.Config{
		Logger: database.NewGormLogger(middleware.Logger),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}
