package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateProjectsTable, downCreateProjectsTable)
}

func upCreateProjectsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE projects (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  name VARCHAR(255) NOT NULL,
	  description TEXT NOT NULL,
	  sector VARCHAR(100) NOT NULL DEFAULT '',
	  deliveryDate DATE NULL,
	  status ENUM('active', 'completed', 'paused') NOT NULL DEFAULT 'active',
	  createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateProjectsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS projects;`)
	return err
}
