package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifttable/internal/domain"
)

func TestGiftItemService_CreateGiftItem(t *testing.T) {
	ctx := context.Background()
	price := decimal.RequireFromString("19.999")
	negative := decimal.NewFromInt(-1)
	tooLarge := decimal.NewFromInt(100_000_000)
	roundsUp := decimal.RequireFromString("99999999.995")

	tests := []struct {
		name       string
		status     domain.EventStatus
		item       domain.GiftItem
		wantErr    error
		wantNotify bool
	}{
		{
			name:   "draft does not notify",
			status: domain.EventStatusDraft,
			item:   domain.GiftItem{Name: "Scarf", Price: &price, StoreURLs: []string{"https://shop.example/scarf", " "}},
		},
		{
			name:       "published notifies attendees",
			status:     domain.EventStatusPublished,
			item:       domain.GiftItem{Name: "Scarf"},
			wantNotify: true,
		},
		{
			name:    "archived rejected",
			status:  domain.EventStatusArchived,
			item:    domain.GiftItem{Name: "Scarf"},
			wantErr: domain.ErrLifecycleViolation,
		},
		{
			name:    "negative price",
			status:  domain.EventStatusDraft,
			item:    domain.GiftItem{Name: "Scarf", Price: &negative},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "price beyond column range",
			status:  domain.EventStatusDraft,
			item:    domain.GiftItem{Name: "Car", Price: &tooLarge},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "price rounding up to the limit",
			status:  domain.EventStatusDraft,
			item:    domain.GiftItem{Name: "Car", Price: &roundsUp},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "store url must be http",
			status:  domain.EventStatusDraft,
			item:    domain.GiftItem{Name: "Scarf", StoreURLs: []string{"ftp://shop.example"}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "name required",
			status:  domain.EventStatusDraft,
			item:    domain.GiftItem{Name: "  "},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			notifier := &recordingNotifier{}
			eventID := store.seedEvent(tt.status)
			svc := NewGiftItemService(store.eventRepo(), store.giftItemRepo(), notifier, testTimeout)

			item := tt.item
			item.EventID = eventID
			err := svc.CreateGiftItem(ctx, &item)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, notifier.added)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, item.ID)
			assert.Nil(t, item.Claim)
			assert.NotNil(t, item.StoreURLs)
			if item.Price != nil {
				assert.Equal(t, "20.00", item.Price.StringFixed(2))
				assert.Equal(t, []string{"https://shop.example/scarf"}, item.StoreURLs)
			}
			if tt.wantNotify {
				assert.Equal(t, []string{item.ID}, notifier.added)
			} else {
				assert.Empty(t, notifier.added)
			}
		})
	}
}

func TestGiftItemService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct {
		status  domain.EventStatus
		wantErr error
	}{
		{status: domain.EventStatusDraft},
		{status: domain.EventStatusPublished},
		{status: domain.EventStatusArchived, wantErr: domain.ErrLifecycleViolation},
	} {
		t.Run(string(tt.status), func(t *testing.T) {
			store := newMemStore()
			eventID := store.seedEvent(tt.status)
			giftID := store.seedGiftItem(eventID, "Scarf")
			svc := NewGiftItemService(store.eventRepo(), store.giftItemRepo(), &recordingNotifier{}, testTimeout)

			got, err := svc.UpdateGiftItem(ctx, giftID, "Wool scarf", nil, []string{"http://shop.example"})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Scarf", store.item(giftID).Name)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Wool scarf", got.Name)
				assert.Nil(t, got.Price)
			}

			err = svc.DeleteGiftItem(ctx, giftID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotNil(t, store.item(giftID))
				return
			}
			require.NoError(t, err)
			assert.Nil(t, store.item(giftID))
		})
	}
}

func TestGiftItemService_ListGiftItems(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	eventID := store.seedEvent(domain.EventStatusArchived)
	store.seedGiftItem(eventID, "Scarf")
	svc := NewGiftItemService(store.eventRepo(), store.giftItemRepo(), &recordingNotifier{}, testTimeout)

	got, err := svc.ListGiftItems(ctx, eventID)
	require.NoError(t, err, "archived events stay readable")
	assert.Len(t, got, 1)

	_, err = svc.ListGiftItems(ctx, "ev-404")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNormalizeGiftItem_largestPrice(t *testing.T) {
	largest := decimal.RequireFromString("99999999.99")
	_, price, _, err := normalizeGiftItem("Car", &largest, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(largest))
}
