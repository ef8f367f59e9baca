// Command seed fills the development database with demo data.
package main

import (
	"context"
	"log"

	"slotvote/internal/config"
	"slotvote/internal/database"
	"slotvote/internal/repository"
	"slotvote/internal/seed"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Run(context.Background(),
		repository.NewUserRepository(db),
		repository.NewPollRepository(db),
		repository.NewVoteRepository(db),
		seed.DefaultOptions(),
	)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
