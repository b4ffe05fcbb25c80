// Migration script to hash passwords imported as plaintext
// cmd/migrate-passwords/main.go
package main

import (
	"context"
	"log"
	"strings"

	"discovery-api/config"
	"discovery-api/models"
	"discovery-api/services"
)

func main() {
	settings := config.Load()
	db, err := config.OpenDB(settings)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDB(db)

	ctx := context.Background()
	users := services.NewUserService(db)

	var rows []models.User
	if err := db.WithContext(ctx).Raw("SELECT id, email, password FROM users").Scan(&rows).Error; err != nil {
		log.Fatal("Failed to fetch users:", err)
	}

	updated := 0
	for _, user := range rows {
		// Skip if already hashed (bcrypt hashes start with $2)
		if strings.HasPrefix(user.Password, "$2") {
			log.Printf("User %s already has hashed password, skipping\n", user.Email)
			continue
		}

		if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
			log.Printf("Failed to update password for user %s: %v\n", user.Email, err)
			continue
		}
		updated++
		log.Printf("Successfully updated password for user %s\n", user.Email)
	}

	log.Printf("Password migration completed! (%d updated)", updated)
}
