// Command seed creates a user with a bcrypt-hashed password so the session
// endpoints can be exercised against a fresh database.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"token-session-service/internal/config"
	"token-session-service/internal/db"
	"token-session-service/internal/security"
	userdomain "token-session-service/internal/user/domain"
	userrepo "token-session-service/internal/user/repository"
)

func main() {
	email := flag.String("email", "admin@example.com", "email of the seeded user")
	password := flag.String("password", "", "password of the seeded user (required)")
	roleID := flag.Int64("role", 1, "role id of the seeded user")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	database := mustOpen(cfg)
	defer database.Close()

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(*password))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := userrepo.NewSQLRepository(database)
	existing, err := users.GetByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("lookup user: %v", err)
	}
	if existing != nil {
		log.Printf("user %s already exists (id %d)", *email, existing.ID)
		return
	}

	id, err := users.Create(ctx, &userdomain.User{
		Email:        *email,
		RoleID:       *roleID,
		Active:       true,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Fatalf("create user: %v", err)
	}
	log.Printf("created user %s (id %d)", *email, id)
}

func mustOpen(cfg *config.Config) *sql.DB {
	if cfg.DatabaseURL != "" {
		d, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		return d
	}
	path := cfg.SQLitePath
	if path == "" {
		path = "sessions.db"
	}
	d, err := db.OpenSQLite(path)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	return d
}
