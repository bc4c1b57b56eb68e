package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"assistant-chat/config"
	"assistant-chat/internal/domain"
	"assistant-chat/internal/repository"
	"assistant-chat/pkg/database"
	assistant_errors "assistant-chat/pkg/errors"
)

const usage = `
Assistant Chat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Create tables and indexes
  status      Show database connection status
  seed        Seed the database with a demo user
  reset       Drop all tables and re-run migrations (DANGEROUS)

Flags:
  -seed-user string  Username for seeding (default "demo")
  -seed-pass string  Password for seeding (default "demo123")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
  go run cmd/migrate/main.go reset
`

func main() {
	seedUser := flag.String("seed-user", "demo", "Username for seeding")
	seedPass := flag.String("seed-pass", "demo123", "Password for seeding")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	switch command {
	case "up":
		if err := repository.InitSchema(ctx, pool); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations applied")

	case "status":
		if err := database.HealthCheck(ctx, pool); err != nil {
			log.Fatalf("Database unreachable: %v", err)
		}
		log.Println("Database connection OK")

	case "seed":
		if err := seed(ctx, pool, *seedUser, *seedPass); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		log.Printf("Seeded user %q", *seedUser)

	case "reset":
		if err := repository.DropSchema(ctx, pool); err != nil {
			log.Fatalf("Drop failed: %v", err)
		}
		if err := repository.InitSchema(ctx, pool); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database reset complete")

	default:
		flag.Usage()
		os.Exit(1)
	}
}

func seed(ctx context.Context, db repository.DBTX, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	repo := repository.NewUserRepository(db)
	err = repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	})
	if errors.Is(err, assistant_errors.ErrAlreadyExists) {
		log.Printf("User %q already present, skipping", username)
		return nil
	}
	return err
}
