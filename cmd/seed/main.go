// Command main seeds the database with demo data for development.
package main

import (
	"flag"
	"log"

	"warble/internal/config"
	"warble/internal/database"
	"warble/internal/seed"
)

func main() {
	users := flag.Int("users", 25, "number of users to create")
	posts := flag.Int("posts", 120, "number of posts to create")
	clean := flag.Bool("clean", false, "delete existing rows before seeding")
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
		log.Fatalf("Database connection failed: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *users,
		NumPosts:    *posts,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
