package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateNotificationsTable, downCreateNotificationsTable)
}

func upCreateNotificationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE notifications (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  userId CHAR(36) NOT NULL,
	  title VARCHAR(255) NOT NULL,
	  description TEXT NOT NULL,
	  type ENUM('deadline', 'upload', 'system', 'user', 'project') NOT NULL,
	  priority ENUM('low', 'medium', 'high') NOT NULL DEFAULT 'medium',
	  isRead TINYINT(1) NOT NULL DEFAULT 0,
	  projectId CHAR(36) NULL,
	  relatedUserId CHAR(36) NULL,
	  deliverableId CHAR(36) NULL,
	  createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	  KEY idx_notifications_user (userId, isRead, createdAt),
	  CONSTRAINT fk_notifications_user FOREIGN KEY (userId) REFERENCES users (id) ON DELETE CASCADE,
	  CONSTRAINT fk_notifications_project FOREIGN KEY (projectId) REFERENCES projects (id) ON DELETE SET NULL,
	  CONSTRAINT fk_notifications_deliverable FOREIGN KEY (deliverableId) REFERENCES deliverables (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateNotificationsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS notifications;`)
	return err
}
