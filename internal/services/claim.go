package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gifttable/internal/domain"
	"gifttable/internal/metrics"
)

type claimService struct {
	gate           domain.AccessGate
	eventRepo      domain.EventRepository
	giftItemRepo   domain.GiftItemRepository
	metrics        *metrics.Metrics
	contextTimeout time.Duration
}

// NewClaimService returns the attendee-facing claim engine. Claims and releases
// are single conditional writes in giftItemRepo; m may be nil.
func NewClaimService(gate domain.AccessGate, eventRepo domain.EventRepository, giftItemRepo domain.GiftItemRepository, m *metrics.Metrics, timeout time.Duration) domain.ClaimService {
	return &claimService{
		gate:           gate,
		eventRepo:      eventRepo,
		giftItemRepo:   giftItemRepo,
		metrics:        m,
		contextTimeout: timeout,
	}
}

func (s *claimService) GetView(ctx context.Context, token string) (*domain.AttendeeView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.gate.OpenView(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, access)
}

func (s *claimService) ListClaimed(ctx context.Context, token string) ([]*domain.AttendeeGiftItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.gate.OpenView(ctx, token)
	if err != nil {
		return nil, err
	}
	items, err := s.giftItemRepo.ListClaimedBy(ctx, access.Attendee.ID)
	if err != nil {
		return nil, fmt.Errorf("list claimed items: %w", err)
	}
	out := make([]*domain.AttendeeGiftItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.ForAttendee(access.Attendee.ID))
	}
	return out, nil
}

func (s *claimService) Claim(ctx context.Context, token, giftItemID string) (*domain.AttendeeView, error) {
	view, err := s.claim(ctx, token, giftItemID)
	s.metrics.ObserveClaim(metrics.OpClaim, outcomeOf(err))
	return view, err
}

func (s *claimService) claim(ctx context.Context, token, giftItemID string) (*domain.AttendeeView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.prepare(ctx, token, giftItemID)
	if err != nil {
		return nil, err
	}
	ok, err := s.giftItemRepo.Claim(ctx, giftItemID, access.Attendee.ID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("claim gift item: %w", err)
	}
	if !ok {
		if err := s.recheckEvent(ctx, access.Event.ID); err != nil {
			return nil, err
		}
		if _, err := s.giftItemRepo.GetByID(ctx, giftItemID); err != nil {
			return nil, err
		}
		return nil, domain.ErrClaimConflict
	}
	return s.view(ctx, access)
}

func (s *claimService) Release(ctx context.Context, token, giftItemID string) (*domain.AttendeeView, error) {
	view, err := s.release(ctx, token, giftItemID)
	s.metrics.ObserveClaim(metrics.OpRelease, outcomeOf(err))
	return view, err
}

func (s *claimService) release(ctx context.Context, token, giftItemID string) (*domain.AttendeeView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.prepare(ctx, token, giftItemID)
	if err != nil {
		return nil, err
	}
	ok, err := s.giftItemRepo.Release(ctx, giftItemID, access.Attendee.ID)
	if err != nil {
		return nil, fmt.Errorf("release gift item: %w", err)
	}
	if !ok {
		if err := s.recheckEvent(ctx, access.Event.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotClaimant
	}
	return s.view(ctx, access)
}

// prepare resolves the token, checks the event status before any write and
// makes sure the item belongs to the attendee's event.
func (s *claimService) prepare(ctx context.Context, token, giftItemID string) (*domain.AttendeeAccess, error) {
	if giftItemID == "" {
		return nil, invalidInput("gift item id is required")
	}
	access, err := s.gate.ResolveAttendee(ctx, token)
	if err != nil {
		return nil, err
	}
	if !access.Event.AllowsClaims() {
		return nil, fmt.Errorf("%w: event is %s", domain.ErrLifecycleViolation, access.Event.Status)
	}
	item, err := s.giftItemRepo.GetByID(ctx, giftItemID)
	if err != nil {
		return nil, err
	}
	if item.EventID != access.Event.ID {
		return nil, domain.ErrNotFound
	}
	return access, nil
}

// recheckEvent reports a lifecycle violation when the event left published
// status between the pre-check and the conditional write.
func (s *claimService) recheckEvent(ctx context.Context, eventID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.AllowsClaims() {
		return fmt.Errorf("%w: event is %s", domain.ErrLifecycleViolation, event.Status)
	}
	return nil
}

func (s *claimService) view(ctx context.Context, access *domain.AttendeeAccess) (*domain.AttendeeView, error) {
	items, err := s.giftItemRepo.ListByEventID(ctx, access.Event.ID)
	if err != nil {
		return nil, fmt.Errorf("list gift items: %w", err)
	}
	me := access.Attendee.ID
	v := &domain.AttendeeView{
		Event: domain.PublicEvent{
			ID:               access.Event.ID,
			Subject:          access.Event.Subject,
			Description:      access.Event.Description,
			GiftReceiverName: access.Event.GiftReceiverName,
			Status:           access.Event.Status,
		},
		Attendee: domain.PublicAttendee{
			ID:    me,
			Name:  access.Attendee.Name,
			Email: access.Attendee.Email,
		},
		GiftItems:     make([]*domain.AttendeeGiftItem, 0, len(items)),
		SelectedItems: []*domain.AttendeeGiftItem{},
	}
	for _, item := range items {
		projected := item.ForAttendee(me)
		v.GiftItems = append(v.GiftItems, projected)
		if projected.ClaimedByMe {
			v.SelectedItems = append(v.SelectedItems, projected)
		}
	}
	return v, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrClaimConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, domain.ErrNotClaimant):
		return metrics.OutcomeNotClaimant
	case errors.Is(err, domain.ErrLifecycleViolation):
		return metrics.OutcomeLifecycleViolation
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
