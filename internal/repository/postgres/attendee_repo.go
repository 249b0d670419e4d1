package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"gifttable/internal/domain"
)

const attendeeColumns = `id, event_id, name, email, access_token, created_at`

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

func scanAttendee(row rowScanner) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	if err := row.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.AccessToken, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// insertAttendee is shared with event creation so attendees land in the same transaction.
// No row is inserted once the event is archived; that surfaces as ErrNotFound.
func insertAttendee(ctx context.Context, q querier, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (event_id, name, email, access_token, created_at)
		SELECT $1::uuid, $2::text, $3::text, $4::text, $5::timestamptz
		WHERE` + mutableEventGuard("$1::uuid") + `
		RETURNING id
	`
	if err := q.QueryRowContext(ctx, query, a.EventID, a.Name, a.Email, a.AccessToken, a.CreatedAt).Scan(&a.ID); err != nil {
		return fmt.Errorf("insert attendee %q: %w", a.Email, translateError(err))
	}
	return nil
}

func (r *attendeeRepository) CreateMany(ctx context.Context, attendees []*domain.Attendee) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range attendees {
		if err := insertAttendee(ctx, tx, a); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE id = $1`
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return a, nil
}

func (r *attendeeRepository) GetByToken(ctx context.Context, token string) (*domain.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE access_token = $1`
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		return nil, translateError(err)
	}
	return a, nil
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := []*domain.Attendee{}
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attendees, nil
}

func (r *attendeeRepository) Update(ctx context.Context, id, name, email string) (*domain.Attendee, error) {
	query := `
		UPDATE attendees
		SET name = $1, email = $2
		WHERE id = $3 AND` + mutableEventGuard("attendees.event_id") + `
		RETURNING ` + attendeeColumns
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, name, email, id))
	if err != nil {
		return nil, translateError(err)
	}
	return a, nil
}

func (r *attendeeRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM attendees WHERE id = $1 AND` + mutableEventGuard("attendees.event_id")
	res, err := r.DB.ExecContext(ctx, query, id)
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
