package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateDeliverablesTable, downCreateDeliverablesTable)
}

func upCreateDeliverablesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE deliverables (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  name VARCHAR(255) NOT NULL,
	  projectId CHAR(36) NOT NULL,
	  format VARCHAR(20) NOT NULL,
	  deadline DATETIME NULL,
	  assignedTo CHAR(36) NULL,
	  status ENUM('pending', 'received_ontime', 'late', 'upcoming') NOT NULL DEFAULT 'pending',
	  uploadedBy VARCHAR(255) NULL,
	  uploadedAt DATETIME NULL,
	  fileSize VARCHAR(50) NULL,
	  filePath VARCHAR(512) NULL,
	  remindedAt DATETIME NULL,
	  createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	  KEY idx_deliverables_project (projectId),
	  KEY idx_deliverables_assignee (assignedTo),
	  KEY idx_deliverables_deadline (deadline),
	  CONSTRAINT fk_deliverables_project FOREIGN KEY (projectId) REFERENCES projects (id) ON DELETE CASCADE,
	  CONSTRAINT fk_deliverables_user FOREIGN KEY (assignedTo) REFERENCES users (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateDeliverablesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS deliverables;`)
	return err
}
