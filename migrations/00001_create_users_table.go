package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsersTable, downCreateUsersTable)
}

func upCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE users (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  firstName VARCHAR(100) NOT NULL,
	  lastName VARCHAR(100) NOT NULL,
	  email VARCHAR(255) NOT NULL,
	  role ENUM('super_admin', 'admin', 'user') NOT NULL DEFAULT 'user',
	  password VARCHAR(255) NOT NULL,
	  avatarColor VARCHAR(50) NOT NULL DEFAULT 'bg-indigo-600',
	  status ENUM('active', 'inactive') NOT NULL DEFAULT 'active',
	  createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	  UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS users;`)
	return err
}
