// grantadmin flips the is_admin flag on a user's profile:
//
//	go run ./cmd/tools/grantadmin user@example.com
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		log.Fatal("usage: grantadmin <email>")
	}
	email := strings.ToLower(strings.TrimSpace(os.Args[1]))

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	store := backend.NewGormStore(db, nil)
	ctx := context.Background()

	docs, err := store.FetchAll(ctx, "users")
	if err != nil {
		log.Fatalf("read users: %v", err)
	}

	userID := ""
	for _, d := range docs {
		var rec struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(d.Data, &rec); err != nil {
			continue
		}
		if rec.Email == email {
			userID = d.ID
			break
		}
	}
	if userID == "" {
		log.Fatalf("no user with email %s", email)
	}

	profile, _ := json.Marshal(map[string]any{"is_admin": true})
	if err := store.Upsert(ctx, "profiles", userID, profile); err != nil {
		log.Fatalf("update profile: %v", err)
	}
	log.Printf("granted admin to %s (%s)", email, userID)
}
