package domain

import (
	"context"
	"time"
)

// Attendee is an invited participant. AccessToken is the only credential for the
// attendee's public view; it is generated once and never changes.
// swagger:model Attendee
type Attendee struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAttendee returns a new Attendee. ID is typically set by the repository on create.
func NewAttendee(eventID, name, email, accessToken string, createdAt time.Time) *Attendee {
	return &Attendee{
		EventID:     eventID,
		Name:        name,
		Email:       email,
		AccessToken: accessToken,
		CreatedAt:   createdAt,
	}
}

// AttendeeRepository defines storage operations for attendees.
// Writes match no row once the owning event is archived and report ErrNotFound.
type AttendeeRepository interface {
	// CreateMany inserts all attendees in one transaction and sets their IDs.
	CreateMany(ctx context.Context, attendees []*Attendee) error
	GetByID(ctx context.Context, id string) (*Attendee, error)
	GetByToken(ctx context.Context, token string) (*Attendee, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Attendee, error)
	Update(ctx context.Context, id, name, email string) (*Attendee, error)
	Delete(ctx context.Context, id string) error
}

// AttendeeService defines the admin operations on an event's invitee list.
type AttendeeService interface {
	AddAttendees(ctx context.Context, eventID string, attendees []*Attendee) ([]*Attendee, error)
	UpdateAttendee(ctx context.Context, id, name, email string) (*Attendee, error)
	DeleteAttendee(ctx context.Context, id string) error
}

// AccessTokenGenerator creates attendee access tokens.
type AccessTokenGenerator interface {
	NewAccessToken() (string, error)
}

// AttendeeAccess is the result of resolving an attendee access token.
type AttendeeAccess struct {
	Attendee *Attendee
	Event    *Event
}

// AccessGate resolves attendee access tokens.
type AccessGate interface {
	// ResolveAttendee maps a token to its attendee and event regardless of event status.
	ResolveAttendee(ctx context.Context, token string) (*AttendeeAccess, error)
	// OpenView is ResolveAttendee for read access: archived events yield ErrEventGone.
	OpenView(ctx context.Context, token string) (*AttendeeAccess, error)
}

// PublicEvent is the subset of an event shown to attendees.
// swagger:model PublicEvent
type PublicEvent struct {
	ID               string      `json:"id"`
	Subject          string      `json:"subject"`
	Description      *string     `json:"description"`
	GiftReceiverName string      `json:"gift_receiver_name"`
	Status           EventStatus `json:"status"`
}

// PublicAttendee is the attendee's own identity as shown in their view.
// swagger:model PublicAttendee
type PublicAttendee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AttendeeView is everything an attendee sees for their event.
// swagger:model AttendeeView
type AttendeeView struct {
	Event         PublicEvent         `json:"event"`
	Attendee      PublicAttendee      `json:"attendee"`
	GiftItems     []*AttendeeGiftItem `json:"gift_items"`
	SelectedItems []*AttendeeGiftItem `json:"selected_items"`
}

// ClaimService is the attendee-facing claim engine.
type ClaimService interface {
	GetView(ctx context.Context, token string) (*AttendeeView, error)
	// Claim reserves the item for the attendee. ErrClaimConflict means someone else holds it.
	Claim(ctx context.Context, token, giftItemID string) (*AttendeeView, error)
	// Release gives the item back. ErrNotClaimant means the attendee does not hold it.
	Release(ctx context.Context, token, giftItemID string) (*AttendeeView, error)
	ListClaimed(ctx context.Context, token string) ([]*AttendeeGiftItem, error)
}
