package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EmailNotification validation errors
var (
	ErrEmptyNotificationID = errors.New("notification ID cannot be empty")
	ErrEmptyRecipient      = errors.New("notification recipient cannot be empty")
	ErrEmptySubject        = errors.New("notification subject cannot be empty")
	ErrSubjectTooLong      = errors.New("notification subject must be at most 200 characters long")
)

// EmailNotification is a record of an outbound email triggered by a task
// assignment. Delivery happens asynchronously in a background job; IsSent
// flips to true once the message has been handed to the mail transport.
type EmailNotification struct {
	ID          uuid.UUID  `json:"id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message"`
	TaskID      *uuid.UUID `json:"task_id,omitempty"`
	SentAt      time.Time  `json:"sent_at"`
	IsSent      bool       `json:"is_sent"`
}

// NewEmailNotification creates a new EmailNotification for the given
// recipient. taskID may be nil for notifications not tied to a task.
// Returns an error if validation fails.
func NewEmailNotification(recipientID uuid.UUID, subject, message string, taskID *uuid.UUID) (*EmailNotification, error) {
	notification := &EmailNotification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Subject:     subject,
		Message:     message,
		TaskID:      taskID,
		SentAt:      time.Now().UTC(),
		IsSent:      false,
	}

	if err := notification.Validate(); err != nil {
		return nil, err
	}

	return notification, nil
}

// Validate checks if the EmailNotification has valid data.
func (n *EmailNotification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.RecipientID == uuid.Nil {
		return ErrEmptyRecipient
	}

	if n.Subject == "" {
		return ErrEmptySubject
	}

	if len(n.Subject) > 200 {
		return ErrSubjectTooLong
	}

	return nil
}
