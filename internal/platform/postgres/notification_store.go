package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db store.DBTX
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// NewPostgresNotificationStore creates a new PostgreSQL implementation of
// the NotificationStore interface.
func NewPostgresNotificationStore(db store.DBTX) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

// WithTx returns a new NotificationStore instance that uses the provided transaction.
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{db: tx}
}

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, notification *domain.EmailNotification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO email_notifications (id, recipient_id, subject, message, task_id, sent_at, is_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		notification.ID,
		notification.RecipientID,
		notification.Subject,
		notification.Message,
		notification.TaskID,
		notification.SentAt,
		notification.IsSent,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// MarkSent implements store.NotificationStore.MarkSent
func (s *PostgresNotificationStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE email_notifications SET is_sent = TRUE, sent_at = NOW() WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "email notification"); err != nil {
		return store.ErrNotificationNotFound
	}

	return nil
}

// ListByRecipient implements store.NotificationStore.ListByRecipient
func (s *PostgresNotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.EmailNotification, error) {
	query := `
		SELECT id, recipient_id, subject, message, task_id, sent_at, is_sent
		FROM email_notifications
		WHERE recipient_id = $1
		ORDER BY sent_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var notifications []*domain.EmailNotification
	for rows.Next() {
		var n domain.EmailNotification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Subject,
			&n.Message,
			&n.TaskID,
			&n.SentAt,
			&n.IsSent,
		); err != nil {
			return nil, MapError(err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return notifications, nil
}
