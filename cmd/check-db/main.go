// cmd/check-db/main.go prints a connection diagnostic for the configured
// MySQL database.
package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"

	"discovery-api/config"
)

func main() {
	settings := config.Load()

	fmt.Println("--- MySQL diagnostic ---")
	fmt.Printf("Connecting to %s:%s as %s\n", settings.DBHost, settings.DBPort, settings.DBUsername)
	fmt.Printf("Database: %s\n", settings.DBDatabase)

	db, err := config.OpenDB(settings)
	if err != nil {
		fmt.Println("Connection failed")
		fmt.Println("Error:", err)
		if h := hint(err, settings.DBDatabase); h != "" {
			fmt.Println("\nHINT:", h)
		}
		return
	}
	defer config.CloseDB(db)
	fmt.Println("Connection succeeded")

	var tables []string
	if err := db.Raw("SHOW TABLES").Scan(&tables).Error; err != nil {
		log.Fatalf("SHOW TABLES failed: %v", err)
	}
	if len(tables) == 0 {
		fmt.Println("Tables: none (run `go run ./cmd/migrate up`)")
		return
	}
	fmt.Println("Tables:", strings.Join(tables, ", "))
}

// hint suggests a fix for the common connection failures.
func hint(err error, database string) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "the MySQL server does not seem to be running on this host/port."
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1045:
			return "the user name or password is wrong."
		case 1049:
			return fmt.Sprintf("database %q does not exist. Create it with \"CREATE DATABASE %s;\".", database, database)
		}
	}
	return ""
}
