package domain

import (
	"context"
	"time"
)

// NotificationType identifies why an attendee was emailed.
type NotificationType string

const (
	NotificationEventPublished NotificationType = "event_published"
	NotificationNewGiftItem    NotificationType = "new_gift_item"
)

// NotificationStatus is the delivery outcome of a notification.
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// Notification is an audit log entry for one email sent to one attendee.
// swagger:model Notification
type Notification struct {
	ID         string             `json:"id"`
	EventID    string             `json:"event_id"`
	AttendeeID *string            `json:"attendee_id"`
	Type       NotificationType   `json:"notification_type"`
	Status     NotificationStatus `json:"status"`
	SentAt     time.Time          `json:"sent_at"`
}

// NotificationRepository defines storage operations for the notification log.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByEventID(ctx context.Context, eventID string) ([]*Notification, error)
}

// Notifier delivers lifecycle notifications in the background. Implementations
// must not block the caller and must never report delivery failures to it.
type Notifier interface {
	EventPublished(ctx context.Context, event *Event)
	GiftItemAdded(ctx context.Context, event *Event, item *GiftItem)
}
