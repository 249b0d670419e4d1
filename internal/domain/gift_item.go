package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// GiftClaim records which attendee holds a gift item and since when.
// The claimant and the timestamp only ever exist together.
// swagger:model GiftClaim
type GiftClaim struct {
	AttendeeID    string    `json:"attendee_id"`
	AttendeeName  string    `json:"attendee_name"`
	AttendeeEmail string    `json:"attendee_email"`
	ClaimedAt     time.Time `json:"claimed_at"`
}

// GiftItem is a gift an attendee may commit to providing.
// swagger:model GiftItem
type GiftItem struct {
	ID        string           `json:"id"`
	EventID   string           `json:"event_id"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price"`
	StoreURLs []string         `json:"store_urls"`
	Claim     *GiftClaim       `json:"claim"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewGiftItem returns a new unclaimed GiftItem. ID is typically set by the repository on create.
func NewGiftItem(eventID, name string, price *decimal.Decimal, storeURLs []string, createdAt time.Time) *GiftItem {
	if storeURLs == nil {
		storeURLs = []string{}
	}
	return &GiftItem{
		EventID:   eventID,
		Name:      name,
		Price:     price,
		StoreURLs: storeURLs,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// IsClaimed reports whether any attendee holds the item.
func (g *GiftItem) IsClaimed() bool {
	return g.Claim != nil
}

// IsClaimedBy reports whether the given attendee holds the item.
func (g *GiftItem) IsClaimedBy(attendeeID string) bool {
	return g.Claim != nil && g.Claim.AttendeeID == attendeeID
}

// AttendeeGiftItem is a gift item as seen by one attendee.
// swagger:model AttendeeGiftItem
type AttendeeGiftItem struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	StoreURLs     []string         `json:"store_urls"`
	Claimed       bool             `json:"claimed"`
	ClaimedByMe   bool             `json:"claimed_by_me"`
	ClaimedByName string           `json:"claimed_by_name,omitempty"`
	ClaimedAt     *time.Time       `json:"claimed_at,omitempty"`
}

// ForAttendee projects the item into the view of the given attendee.
func (g *GiftItem) ForAttendee(attendeeID string) *AttendeeGiftItem {
	out := &AttendeeGiftItem{
		ID:        g.ID,
		Name:      g.Name,
		Price:     g.Price,
		StoreURLs: g.StoreURLs,
	}
	if g.Claim != nil {
		claimedAt := g.Claim.ClaimedAt
		out.Claimed = true
		out.ClaimedByMe = g.Claim.AttendeeID == attendeeID
		out.ClaimedByName = g.Claim.AttendeeName
		out.ClaimedAt = &claimedAt
	}
	return out
}

// GiftItemRepository defines storage operations for gift items, including the
// conditional writes behind claiming. Create, Update and Delete match no row
// once the owning event is archived and report ErrNotFound.
type GiftItemRepository interface {
	Create(ctx context.Context, item *GiftItem) error
	GetByID(ctx context.Context, id string) (*GiftItem, error)
	ListByEventID(ctx context.Context, eventID string) ([]*GiftItem, error)
	ListClaimedBy(ctx context.Context, attendeeID string) ([]*GiftItem, error)
	Update(ctx context.Context, id, name string, price *decimal.Decimal, storeURLs []string) (*GiftItem, error)
	Delete(ctx context.Context, id string) error
	// Claim sets the claimant in a single statement, only if the item is unclaimed
	// and its event is published. Reports whether a row changed.
	Claim(ctx context.Context, id, attendeeID string, at time.Time) (bool, error)
	// Release clears the claim in a single statement, only if attendeeID holds it
	// and its event is published. Reports whether a row changed.
	Release(ctx context.Context, id, attendeeID string) (bool, error)
}

// GiftItemService defines the admin operations on an event's gift list.
type GiftItemService interface {
	ListGiftItems(ctx context.Context, eventID string) ([]*GiftItem, error)
	CreateGiftItem(ctx context.Context, item *GiftItem) error
	UpdateGiftItem(ctx context.Context, id, name string, price *decimal.Decimal, storeURLs []string) (*GiftItem, error)
	DeleteGiftItem(ctx context.Context, id string) error
}
