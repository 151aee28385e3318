package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/schedulr/admin-api/config"
	"github.com/schedulr/admin-api/pkg/helpers"
)

// Ensures a bootstrap ADMIN account exists so the admin endpoints are
// reachable on a fresh database.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (email, username, name, role, password)
		VALUES ($1, 'admin', 'Administrator', 'ADMIN', $2)
		ON CONFLICT (email) DO UPDATE SET role = 'ADMIN'
		RETURNING id
	`, cfg.AdminEmail, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%d email=%s\n", id, cfg.AdminEmail)
}
