package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateProjectAdminsTable, downCreateProjectAdminsTable)
}

func upCreateProjectAdminsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE project_admins (
	  projectId CHAR(36) NOT NULL,
	  userId CHAR(36) NOT NULL,
	  PRIMARY KEY (projectId, userId),
	  KEY idx_project_admins_user (userId),
	  CONSTRAINT fk_project_admins_project FOREIGN KEY (projectId) REFERENCES projects (id) ON DELETE CASCADE,
	  CONSTRAINT fk_project_admins_user FOREIGN KEY (userId) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateProjectAdminsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS project_admins;`)
	return err
}
