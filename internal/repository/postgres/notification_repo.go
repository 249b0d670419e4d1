package postgres

import (
	"context"
	"database/sql"

	"gifttable/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO email_notifications (event_id, attendee_id, notification_type, status, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, n.EventID, n.AttendeeID, string(n.Type), string(n.Status), n.SentAt).
		Scan(&n.ID)
}

func (r *notificationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, event_id, attendee_id, notification_type, status, sent_at
		FROM email_notifications
		WHERE event_id = $1
		ORDER BY sent_at DESC, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	out := []*domain.Notification{}
	for rows.Next() {
		n := &domain.Notification{}
		var attendeeID sql.NullString
		if err := rows.Scan(&n.ID, &n.EventID, &attendeeID, &n.Type, &n.Status, &n.SentAt); err != nil {
			return nil, err
		}
		n.AttendeeID = nullableString(attendeeID)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
