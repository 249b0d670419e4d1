package domain

import (
	"context"
	"slices"
	"time"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusArchived  EventStatus = "archived"
)

// eventTransitions lists, for each status, the statuses it may move to.
// Archived is terminal; cloning is not a transition.
var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusDraft:     {EventStatusPublished, EventStatusArchived},
	EventStatusPublished: {EventStatusDraft, EventStatusArchived},
	EventStatusArchived:  nil,
}

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	_, ok := eventTransitions[s]
	return ok
}

// CanTransitionTo reports whether an event in status s may move to status to.
// A transition to the current status is never allowed.
func (s EventStatus) CanTransitionTo(to EventStatus) bool {
	return slices.Contains(eventTransitions[s], to)
}

// TransitionSources returns the statuses from which to is reachable, in a stable order.
func TransitionSources(to EventStatus) []EventStatus {
	var out []EventStatus
	for _, from := range []EventStatus{EventStatusDraft, EventStatusPublished, EventStatusArchived} {
		if from.CanTransitionTo(to) {
			out = append(out, from)
		}
	}
	return out
}

// Event is a gift-giving occasion.
// swagger:model Event
type Event struct {
	ID               string      `json:"id"`
	Subject          string      `json:"subject"`
	Description      *string     `json:"description"`
	GiftReceiverName string      `json:"gift_receiver_name"`
	Status           EventStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	PublishedAt      *time.Time  `json:"published_at"`
	ClosedAt         *time.Time  `json:"closed_at"`
}

// NewEvent returns a new draft Event. ID is typically set by the repository on create.
func NewEvent(subject string, description *string, giftReceiverName string, createdAt time.Time) *Event {
	return &Event{
		Subject:          subject,
		Description:      description,
		GiftReceiverName: giftReceiverName,
		Status:           EventStatusDraft,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

// AllowsMutation reports whether the event, its attendees and gift items may be changed.
func (e *Event) AllowsMutation() bool {
	return e.Status != EventStatusArchived
}

// AllowsClaims reports whether attendees may claim or release gift items.
func (e *Event) AllowsClaims() bool {
	return e.Status == EventStatusPublished
}

// EventSummary is an event with attendee and gift item counts, used in admin listings.
// swagger:model EventSummary
type EventSummary struct {
	Event
	AttendeeCount int `json:"attendee_count"`
	GiftCount     int `json:"gift_count"`
}

// EventDetails bundles an event with its attendees and gift items.
// swagger:model EventDetails
type EventDetails struct {
	Event     *Event      `json:"event"`
	Attendees []*Attendee `json:"attendees"`
	GiftItems []*GiftItem `json:"gift_items"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	// Create inserts the event and its attendees in one transaction and sets their IDs.
	Create(ctx context.Context, event *Event, attendees []*Attendee) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*EventSummary, int, error)
	// Update changes the descriptive fields of a non-archived event. Returns ErrNotFound when no such row matched.
	Update(ctx context.Context, id, subject string, description *string, giftReceiverName string) (*Event, error)
	// Transition moves the event to status to if its current status is one of from, stamping
	// published_at or closed_at as appropriate. Returns ErrNotFound when no row matched.
	Transition(ctx context.Context, id string, from []EventStatus, to EventStatus, at time.Time) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the admin-facing event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, attendees []*Attendee) (*EventDetails, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*EventSummary, int, error)
	GetEventDetails(ctx context.Context, id string) (*EventDetails, error)
	UpdateEvent(ctx context.Context, id, subject string, description *string, giftReceiverName string) (*Event, error)
	Publish(ctx context.Context, id string) (*Event, error)
	RevertToDraft(ctx context.Context, id string) (*Event, error)
	Archive(ctx context.Context, id string) (*Event, error)
	// Clone creates a new draft event with the source's attendees (fresh tokens) and no gift items.
	Clone(ctx context.Context, id string) (*EventDetails, error)
	// DeleteEvent removes the event with its attendees and gift items. Published events need confirmed=true.
	DeleteEvent(ctx context.Context, id string, confirmed bool) error
	ListNotifications(ctx context.Context, id string) ([]*Notification, error)
}
