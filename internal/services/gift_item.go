package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gifttable/internal/domain"
)

type giftItemService struct {
	eventRepo      domain.EventRepository
	giftItemRepo   domain.GiftItemRepository
	notifier       domain.Notifier
	contextTimeout time.Duration
}

// NewGiftItemService manages an event's gift list. Items added to a published
// event are announced to its attendees through notifier.
func NewGiftItemService(eventRepo domain.EventRepository, giftItemRepo domain.GiftItemRepository, notifier domain.Notifier, timeout time.Duration) domain.GiftItemService {
	return &giftItemService{
		eventRepo:      eventRepo,
		giftItemRepo:   giftItemRepo,
		notifier:       notifier,
		contextTimeout: timeout,
	}
}

func (s *giftItemService) ListGiftItems(ctx context.Context, eventID string) ([]*domain.GiftItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	items, err := s.giftItemRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list gift items: %w", err)
	}
	return items, nil
}

func (s *giftItemService) CreateGiftItem(ctx context.Context, item *domain.GiftItem) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name, price, urls, err := normalizeGiftItem(item.Name, item.Price, item.StoreURLs)
	if err != nil {
		return err
	}
	event, err := mutableEvent(ctx, s.eventRepo, item.EventID)
	if err != nil {
		return err
	}

	created := domain.NewGiftItem(event.ID, name, price, urls, time.Now())
	if err := s.giftItemRepo.Create(ctx, created); err != nil {
		return fmt.Errorf("create gift item: %w", guardedWriteError(ctx, s.eventRepo, event.ID, err))
	}
	*item = *created

	// The status read before the insert may be stale by now.
	event, err = s.eventRepo.GetByID(ctx, event.ID)
	if err == nil && event.Status == domain.EventStatusPublished {
		s.notifier.GiftItemAdded(ctx, event, created)
	}
	return nil
}

func (s *giftItemService) UpdateGiftItem(ctx context.Context, id, name string, price *decimal.Decimal, storeURLs []string) (*domain.GiftItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name, price, storeURLs, err := normalizeGiftItem(name, price, storeURLs)
	if err != nil {
		return nil, err
	}
	current, err := s.giftItemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := mutableEvent(ctx, s.eventRepo, current.EventID); err != nil {
		return nil, err
	}
	updated, err := s.giftItemRepo.Update(ctx, id, name, price, storeURLs)
	if err != nil {
		return nil, guardedWriteError(ctx, s.eventRepo, current.EventID, err)
	}
	return updated, nil
}

func (s *giftItemService) DeleteGiftItem(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.giftItemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := mutableEvent(ctx, s.eventRepo, current.EventID); err != nil {
		return err
	}
	if err := s.giftItemRepo.Delete(ctx, id); err != nil {
		return guardedWriteError(ctx, s.eventRepo, current.EventID, err)
	}
	return nil
}
