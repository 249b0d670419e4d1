package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"gifttable/internal/domain"
)

// giftItemSelect joins the claimant so a claim is always read with its name and email.
const giftItemSelect = `
	SELECT g.id, g.event_id, g.name, g.price, g.store_urls, g.claimed_by, g.claimed_at,
		a.name, a.email, g.created_at, g.updated_at
	FROM gift_items g
	LEFT JOIN attendees a ON a.id = g.claimed_by
`

// publishedEventGuard locks the owning event row so a concurrent status change
// is seen before the claim is written.
const publishedEventGuard = `
	EXISTS (
		SELECT 1 FROM events e
		WHERE e.id = gift_items.event_id AND e.status = 'published'
		FOR SHARE
	)
`

type giftItemRepository struct {
	DB *sql.DB
}

func NewGiftItemRepository(db *sql.DB) domain.GiftItemRepository {
	return &giftItemRepository{
		DB: db,
	}
}

func scanGiftItem(row rowScanner) (*domain.GiftItem, error) {
	g := &domain.GiftItem{}
	var (
		price                       decimal.NullDecimal
		storeURLs                   pq.StringArray
		claimedBy                   sql.NullString
		claimedAt                   sql.NullTime
		claimantName, claimantEmail sql.NullString
	)
	err := row.Scan(&g.ID, &g.EventID, &g.Name, &price, &storeURLs, &claimedBy, &claimedAt,
		&claimantName, &claimantEmail, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		p := price.Decimal
		g.Price = &p
	}
	g.StoreURLs = []string(storeURLs)
	if g.StoreURLs == nil {
		g.StoreURLs = []string{}
	}
	if claimedBy.Valid && claimedAt.Valid {
		g.Claim = &domain.GiftClaim{
			AttendeeID:    claimedBy.String,
			AttendeeName:  claimantName.String,
			AttendeeEmail: claimantEmail.String,
			ClaimedAt:     claimedAt.Time,
		}
	}
	return g, nil
}

func priceArg(p *decimal.Decimal) any {
	if p == nil {
		return nil
	}
	return *p
}

func storeURLsArg(urls []string) any {
	if urls == nil {
		urls = []string{}
	}
	return pq.Array(urls)
}

func (r *giftItemRepository) Create(ctx context.Context, item *domain.GiftItem) error {
	query := `
		INSERT INTO gift_items (event_id, name, price, store_urls, created_at, updated_at)
		SELECT $1::uuid, $2::text, $3::numeric, $4::text[], $5::timestamptz, $6::timestamptz
		WHERE` + mutableEventGuard("$1::uuid") + `
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, item.EventID, item.Name, priceArg(item.Price), storeURLsArg(item.StoreURLs), item.CreatedAt, item.UpdatedAt).
		Scan(&item.ID)
	return translateError(err)
}

func (r *giftItemRepository) GetByID(ctx context.Context, id string) (*domain.GiftItem, error) {
	g, err := scanGiftItem(r.DB.QueryRowContext(ctx, giftItemSelect+`WHERE g.id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return g, nil
}

func (r *giftItemRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.GiftItem, error) {
	return r.list(ctx, giftItemSelect+`WHERE g.event_id = $1 ORDER BY g.created_at, g.id`, eventID)
}

func (r *giftItemRepository) ListClaimedBy(ctx context.Context, attendeeID string) ([]*domain.GiftItem, error) {
	return r.list(ctx, giftItemSelect+`WHERE g.claimed_by = $1 ORDER BY g.claimed_at, g.id`, attendeeID)
}

func (r *giftItemRepository) list(ctx context.Context, query string, args ...any) ([]*domain.GiftItem, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.GiftItem{}
	for rows.Next() {
		g, err := scanGiftItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *giftItemRepository) Update(ctx context.Context, id, name string, price *decimal.Decimal, storeURLs []string) (*domain.GiftItem, error) {
	query := `
		UPDATE gift_items
		SET name = $1, price = $2, store_urls = $3, updated_at = NOW()
		WHERE id = $4 AND` + mutableEventGuard("gift_items.event_id")
	res, err := r.DB.ExecContext(ctx, query, name, priceArg(price), storeURLsArg(storeURLs), id)
	if err != nil {
		return nil, translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *giftItemRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM gift_items WHERE id = $1 AND` + mutableEventGuard("gift_items.event_id")
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

func (r *giftItemRepository) Claim(ctx context.Context, id, attendeeID string, at time.Time) (bool, error) {
	query := `
		UPDATE gift_items
		SET claimed_by = $1, claimed_at = $2, updated_at = $2
		WHERE id = $3 AND claimed_by IS NULL AND` + publishedEventGuard
	return r.execConditional(ctx, query, attendeeID, at, id)
}

func (r *giftItemRepository) Release(ctx context.Context, id, attendeeID string) (bool, error) {
	query := `
		UPDATE gift_items
		SET claimed_by = NULL, claimed_at = NULL, updated_at = NOW()
		WHERE id = $1 AND claimed_by = $2 AND` + publishedEventGuard
	return r.execConditional(ctx, query, id, attendeeID)
}

func (r *giftItemRepository) execConditional(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
