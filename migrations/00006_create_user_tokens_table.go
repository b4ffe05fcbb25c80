package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUserTokensTable, downCreateUserTokensTable)
}

func upCreateUserTokensTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE user_tokens (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  userId CHAR(36) NOT NULL,
	  tokenType VARCHAR(32) NOT NULL,
	  tokenHash CHAR(64) NOT NULL,
	  expiresAt DATETIME NOT NULL,
	  isRevoked TINYINT(1) NOT NULL DEFAULT 0,
	  createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	  UNIQUE KEY uq_user_tokens_hash (tokenHash),
	  CONSTRAINT fk_user_tokens_user FOREIGN KEY (userId) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateUserTokensTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS user_tokens;`)
	return err
}
