// cmd/migrate/main.go applies the goose migrations.
//
//	go run ./cmd/migrate [up|down|status|redo|reset|version] [args...]
package main

import (
	"context"
	"flag"
	"log"

	"discovery-api/config"
	"discovery-api/migrations"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding the migration sources")
	flag.Parse()

	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	settings := config.Load()
	db, err := config.OpenDB(settings)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to access sql pool: %v", err)
	}

	if err := migrations.RunDir(context.Background(), sqlDB, *dir, command, args...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("goose %s completed", command)
}
