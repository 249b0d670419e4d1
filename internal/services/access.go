package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gifttable/internal/domain"
)

type accessGate struct {
	attendeeRepo   domain.AttendeeRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewAccessGate resolves attendee access tokens. Unknown and malformed tokens
// are both reported as domain.ErrNotFound.
func NewAccessGate(attendeeRepo domain.AttendeeRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.AccessGate {
	return &accessGate{
		attendeeRepo:   attendeeRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (g *accessGate) ResolveAttendee(ctx context.Context, token string) (*domain.AttendeeAccess, error) {
	ctx, cancel := context.WithTimeout(ctx, g.contextTimeout)
	defer cancel()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrNotFound
	}
	attendee, err := g.attendeeRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve access token: %w", err)
	}
	event, err := g.eventRepo.GetByID(ctx, attendee.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	return &domain.AttendeeAccess{Attendee: attendee, Event: event}, nil
}

func (g *accessGate) OpenView(ctx context.Context, token string) (*domain.AttendeeAccess, error) {
	access, err := g.ResolveAttendee(ctx, token)
	if err != nil {
		return nil, err
	}
	if access.Event.Status == domain.EventStatusArchived {
		return nil, domain.ErrEventGone
	}
	return access, nil
}
