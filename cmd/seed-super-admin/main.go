// cmd/seed-super-admin/main.go creates the first super_admin account.
//
//	go run ./cmd/seed-super-admin -email root@example.com -password '...'
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"discovery-api/apperrors"
	"discovery-api/config"
	"discovery-api/models"
	"discovery-api/services"
	"discovery-api/utils"
)

func main() {
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "account email")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "account password")
	firstName := flag.String("first-name", "Super", "first name")
	lastName := flag.String("last-name", "Admin", "last name")
	flag.Parse()

	if !utils.ValidateEmail(*email) {
		log.Fatal("A valid -email is required")
	}
	if ok, msg := utils.ValidatePassword(*password); !ok {
		log.Fatalf("Invalid -password: %s", msg)
	}

	settings := config.Load()
	db, err := config.OpenDB(settings)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDB(db)

	user, err := services.NewUserService(db).Create(context.Background(), services.CreateUserInput{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Role:      string(models.RoleSuperAdmin),
		Password:  *password,
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindConflict {
			log.Printf("User %s already exists, nothing to do", *email)
			return
		}
		log.Fatalf("Failed to create super admin: %v", err)
	}
	log.Printf("Created super_admin %s (%s)", user.Email, user.ID)
}
