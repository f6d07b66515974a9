// Command seed fills the database with demo titles, reviews and comments.
package main

import (
	"context"
	"flag"
	"log"

	"critique/internal/config"
	"critique/internal/database"
	"critique/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numTitles := flag.Int("titles", 50, "Number of titles to create")
	reviews := flag.Int("reviews", 5, "Reviews per title")
	comments := flag.Int("comments", 2, "Comments per review")
	clean := flag.Bool("clean", false, "Delete all rows before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	stats, err := seed.NewSeeder(db).Run(context.Background(), seed.Options{
		NumUsers:          *numUsers,
		NumTitles:         *numTitles,
		ReviewsPerTitle:   *reviews,
		CommentsPerReview: *comments,
		Clean:             *clean,
		Seed:              *seedValue,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d titles, %d reviews, %d comments",
		stats.Users, stats.Titles, stats.Reviews, stats.Comments)
}
