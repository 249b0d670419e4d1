package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gifttable/internal/domain"
)

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	tokens         domain.AccessTokenGenerator
	contextTimeout time.Duration
}

// NewAttendeeService manages the invitee list of an event.
func NewAttendeeService(eventRepo domain.EventRepository, attendeeRepo domain.AttendeeRepository, tokens domain.AccessTokenGenerator, timeout time.Duration) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		tokens:         tokens,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) AddAttendees(ctx context.Context, eventID string, attendees []*domain.Attendee) ([]*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(attendees) == 0 {
		return nil, invalidInput("at least one attendee is required")
	}
	prepared, err := prepareAttendees(attendees, s.tokens, time.Now())
	if err != nil {
		return nil, err
	}
	if _, err := mutableEvent(ctx, s.eventRepo, eventID); err != nil {
		return nil, err
	}
	for _, a := range prepared {
		a.EventID = eventID
	}
	if err := s.attendeeRepo.CreateMany(ctx, prepared); err != nil {
		return nil, fmt.Errorf("add attendees: %w", guardedWriteError(ctx, s.eventRepo, eventID, err))
	}
	return prepared, nil
}

func (s *attendeeService) UpdateAttendee(ctx context.Context, id, name, email string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name, email, err := normalizeAttendee(name, email)
	if err != nil {
		return nil, err
	}
	current, err := s.attendeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := mutableEvent(ctx, s.eventRepo, current.EventID); err != nil {
		return nil, err
	}
	updated, err := s.attendeeRepo.Update(ctx, id, name, email)
	if err != nil {
		return nil, guardedWriteError(ctx, s.eventRepo, current.EventID, err)
	}
	return updated, nil
}

func (s *attendeeService) DeleteAttendee(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.attendeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := mutableEvent(ctx, s.eventRepo, current.EventID); err != nil {
		return err
	}
	if err := s.attendeeRepo.Delete(ctx, id); err != nil {
		return guardedWriteError(ctx, s.eventRepo, current.EventID, err)
	}
	return nil
}

// mutableEvent loads the event and rejects it if archived.
func mutableEvent(ctx context.Context, repo domain.EventRepository, eventID string) (*domain.Event, error) {
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.AllowsMutation() {
		return nil, fmt.Errorf("%w: event is %s", domain.ErrLifecycleViolation, event.Status)
	}
	return event, nil
}

// guardedWriteError explains a write that matched no row: the event was
// archived after mutableEvent checked it, or the row itself is gone.
func guardedWriteError(ctx context.Context, repo domain.EventRepository, eventID string, err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, mErr := mutableEvent(ctx, repo, eventID); mErr != nil {
		return mErr
	}
	return err
}
