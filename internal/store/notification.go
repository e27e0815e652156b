package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhive/internal/domain"
)

// NotificationStore defines the interface for email notification persistence.
type NotificationStore interface {
	// Create saves a new email notification record to the store.
	Create(ctx context.Context, notification *domain.EmailNotification) error

	// MarkSent flags the notification as sent and stamps the send time.
	// Returns ErrNotificationNotFound if the notification does not exist.
	MarkSent(ctx context.Context, id uuid.UUID) error

	// ListByRecipient returns all notifications for the given user,
	// newest first.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.EmailNotification, error)

	// WithTx returns a new NotificationStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
