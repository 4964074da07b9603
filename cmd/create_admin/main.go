package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"realtyhub/internal/config"
	"realtyhub/internal/domain"
	"realtyhub/internal/storage/backends"
	"realtyhub/internal/util"
	apperrors "realtyhub/pkg/errors"
)

func main() {
	username := flag.String("username", envOr("ADMIN_USERNAME", "admin"), "admin username")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (or ADMIN_PASSWORD)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	creds := domain.Credentials{Username: *username, Password: *password}
	if err := domain.Validate(creds); err != nil {
		log.Fatalf("Invalid admin credentials: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.ConnectTimeout)
	defer cancel()

	store, err := backends.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	hash, err := util.HashPassword(creds.Password, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user, err := store.CreateUser(ctx, domain.NewUser{Username: creds.Username, PasswordHash: hash, IsAdmin: true})
	if apperrors.IsDuplicateKey(err) {
		fmt.Printf("User %q already exists!\n", creds.Username)
		return
	}
	if err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Println("Admin user created successfully!")
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("ID: %s\n", user.ID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
