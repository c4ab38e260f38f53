package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-accounts/config"
	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	mongoinfra "github.com/oksasatya/go-user-accounts/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	db, client, err := mongoinfra.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := mongoinfra.NewUserRepository(db, cfg.MongoUsersCollection, cfg.MongoTimeout)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	// No mailer: Create makes an active account and never sends email.
	svc := userapp.NewService(repo, helpers.NewBcryptHasher(0), nil, logger)

	email := getenv("SEED_EMAIL", "demo@example.com")
	password := getenv("SEED_PASSWORD", "password123")
	name := getenv("SEED_NAME", "demoUser")

	out, err := svc.Create(ctx, userapp.CreateUserInput{Name: name, Email: email, Password: password})
	if errors.Is(err, userapp.ErrDuplicateEmail) {
		fmt.Printf("user already exists: email=%s\n", email)
		return
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", out.ID, email, name, password)
}
