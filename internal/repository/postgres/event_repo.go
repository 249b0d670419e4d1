package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gifttable/internal/domain"
)

const eventColumns = `id, subject, description, gift_receiver_name, status, created_at, updated_at, published_at, closed_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner, dest ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var description sql.NullString
	var publishedAt, closedAt sql.NullTime
	targets := []any{&e.ID, &e.Subject, &description, &e.GiftReceiverName, &e.Status, &e.CreatedAt, &e.UpdatedAt, &publishedAt, &closedAt}
	if err := row.Scan(append(targets, dest...)...); err != nil {
		return nil, err
	}
	e.Description = nullableString(description)
	e.PublishedAt = nullableTime(publishedAt)
	e.ClosedAt = nullableTime(closedAt)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event, attendees []*domain.Attendee) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (subject, description, gift_receiver_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query, event.Subject, event.Description, event.GiftReceiverName, event.Status, event.CreatedAt, event.UpdatedAt).
		Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("insert event: %w", translateError(err))
	}

	for _, a := range attendees {
		a.EventID = event.ID
		if err := insertAttendee(ctx, tx, a); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.EventSummary, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}

	// LIMIT NULL means no limit.
	limit := sql.NullInt64{Int64: int64(params.Limit()), Valid: params.Limit() > 0}
	query := `
		SELECT ` + eventColumns + `,
			(SELECT COUNT(*) FROM attendees a WHERE a.event_id = events.id) AS attendee_count,
			(SELECT COUNT(*) FROM gift_items g WHERE g.event_id = events.id) AS gift_count
		FROM events
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := []*domain.EventSummary{}
	for rows.Next() {
		s := &domain.EventSummary{}
		e, err := scanEvent(rows, &s.AttendeeCount, &s.GiftCount)
		if err != nil {
			return nil, 0, err
		}
		s.Event = *e
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *eventRepository) Update(ctx context.Context, id, subject string, description *string, giftReceiverName string) (*domain.Event, error) {
	query := `
		UPDATE events
		SET subject = $1, description = $2, gift_receiver_name = $3, updated_at = NOW()
		WHERE id = $4 AND status <> 'archived'
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, subject, description, giftReceiverName, id))
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func (r *eventRepository) Transition(ctx context.Context, id string, from []domain.EventStatus, to domain.EventStatus, at time.Time) (*domain.Event, error) {
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}
	query := `
		UPDATE events
		SET status = $1,
			published_at = CASE WHEN $1 = 'published' THEN $2 ELSE published_at END,
			closed_at = CASE WHEN $1 = 'archived' THEN $2 ELSE closed_at END,
			updated_at = $2
		WHERE id = $3 AND status = ANY($4)
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, string(to), at, id, pq.Array(sources)))
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
