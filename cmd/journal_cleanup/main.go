package main

import (
	"context"
	"log"
	"time"

	"leadintake/internal/config"
	"leadintake/internal/database"
	"leadintake/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, nil)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db, repository.Models()...); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	cutoff := time.Now().Add(-cfg.JournalRetention)
	n, err := repository.NewSubmissionRepository(db).Prune(context.Background(), cutoff)
	if err != nil {
		log.Fatalf("cleanup lead_submissions failed: %v", err)
	}

	log.Printf("journal cleanup completed: lead_submissions=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
}
