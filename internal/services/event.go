package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gifttable/internal/domain"
)

type eventService struct {
	eventRepo        domain.EventRepository
	attendeeRepo     domain.AttendeeRepository
	giftItemRepo     domain.GiftItemRepository
	notificationRepo domain.NotificationRepository
	tokens           domain.AccessTokenGenerator
	notifier         domain.Notifier
	contextTimeout   time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	giftItemRepo domain.GiftItemRepository,
	notificationRepo domain.NotificationRepository,
	tokens domain.AccessTokenGenerator,
	notifier domain.Notifier,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		attendeeRepo:     attendeeRepo,
		giftItemRepo:     giftItemRepo,
		notificationRepo: notificationRepo,
		tokens:           tokens,
		notifier:         notifier,
		contextTimeout:   timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, attendees []*domain.Attendee) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	subject, description, receiver, err := normalizeEventFields(event.Subject, event.Description, event.GiftReceiverName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	created := domain.NewEvent(subject, description, receiver, now)

	prepared, err := prepareAttendees(attendees, s.tokens, now)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, created, prepared); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &domain.EventDetails{Event: created, Attendees: prepared, GiftItems: []*domain.GiftItem{}}, nil
}

// prepareAttendees validates the input and returns fresh attendees with new access tokens.
// Event IDs are filled in by the repository.
func prepareAttendees(in []*domain.Attendee, tokens domain.AccessTokenGenerator, now time.Time) ([]*domain.Attendee, error) {
	out := make([]*domain.Attendee, 0, len(in))
	for _, a := range in {
		name, email, err := normalizeAttendee(a.Name, a.Email)
		if err != nil {
			return nil, err
		}
		token, err := tokens.NewAccessToken()
		if err != nil {
			return nil, fmt.Errorf("generate access token: %w", err)
		}
		out = append(out, domain.NewAttendee(a.EventID, name, email, token, now))
	}
	return out, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.EventSummary, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) GetEventDetails(ctx context.Context, id string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attendees, err := s.attendeeRepo.ListByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	items, err := s.giftItemRepo.ListByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list gift items: %w", err)
	}
	return &domain.EventDetails{Event: event, Attendees: attendees, GiftItems: items}, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id, subject string, description *string, giftReceiverName string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	subject, description, giftReceiverName, err := normalizeEventFields(subject, description, giftReceiverName)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.Update(ctx, id, subject, description, giftReceiverName)
	if errors.Is(err, domain.ErrNotFound) {
		// Either the event is gone or it is archived.
		current, getErr := s.eventRepo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: event is %s", domain.ErrLifecycleViolation, current.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) Publish(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.transition(ctx, id, domain.EventStatusPublished)
	if err != nil {
		return nil, err
	}
	s.notifier.EventPublished(ctx, event)
	return event, nil
}

func (s *eventService) RevertToDraft(ctx context.Context, id string) (*domain.Event, error) {
	return s.transition(ctx, id, domain.EventStatusDraft)
}

func (s *eventService) Archive(ctx context.Context, id string) (*domain.Event, error) {
	return s.transition(ctx, id, domain.EventStatusArchived)
}

// transition applies a lifecycle move as one conditional update. When no row
// matches, the event is re-read to tell a missing event from an illegal move.
func (s *eventService) transition(ctx context.Context, id string, to domain.EventStatus) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.Transition(ctx, id, domain.TransitionSources(to), to, time.Now())
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("transition event to %s: %w", to, err)
	}
	current, getErr := s.eventRepo.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: cannot move event from %s to %s", domain.ErrLifecycleViolation, current.Status, to)
}

func (s *eventService) Clone(ctx context.Context, id string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	source, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attendees, err := s.attendeeRepo.ListByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}

	now := time.Now()
	clone := domain.NewEvent(source.Subject, source.Description, source.GiftReceiverName, now)
	copies := make([]*domain.Attendee, 0, len(attendees))
	for _, a := range attendees {
		token, err := s.tokens.NewAccessToken()
		if err != nil {
			return nil, fmt.Errorf("generate access token: %w", err)
		}
		copies = append(copies, domain.NewAttendee("", a.Name, a.Email, token, now))
	}
	if err := s.eventRepo.Create(ctx, clone, copies); err != nil {
		return nil, fmt.Errorf("create clone: %w", err)
	}
	return &domain.EventDetails{Event: clone, Attendees: copies, GiftItems: []*domain.GiftItem{}}, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string, confirmed bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.Status == domain.EventStatusPublished && !confirmed {
		return domain.ErrConfirmationRequired
	}
	return s.eventRepo.Delete(ctx, id)
}

func (s *eventService) ListNotifications(ctx context.Context, id string) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.notificationRepo.ListByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}
