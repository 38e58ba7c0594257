// Command seed fills the lireddit database with demo users and posts.
package main

import (
	"context"
	"flag"
	"log"

	"lireddit/internal/config"
	"lireddit/internal/database"
	"lireddit/internal/middleware"
	"lireddit/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 50, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing them")
	flag.Parse()

	log.Printf("Seeding: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env)

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.Seed(ctx, db, seed.Options{
		NumUsers: *numUsers,
		NumPosts: *numPosts,
		Clean:    *shouldClean,
		DryRun:   *dryRun,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d posts", len(res.Users), len(res.Posts))
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
