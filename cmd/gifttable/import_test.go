package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifttable/internal/domain"
)

const sampleEventYAML = `
subject: Secret Santa 2026
description: Office exchange, budget 25 EUR
gift_receiver_name: Carol
publish: true
attendees:
  - name: Ann
    email: ann@example.com
  - name: Bob
    email: bob@example.com
gift_items:
  - name: Scarf
    price: "19.90"
    store_urls:
      - https://shop.example.com/scarf
  - name: Mystery novel
`

type importEventService struct {
	domain.EventService
	created   *domain.Event
	attendees []*domain.Attendee
	published []string
}

func (s *importEventService) CreateEvent(ctx context.Context, event *domain.Event, attendees []*domain.Attendee) (*domain.EventDetails, error) {
	event.ID = "ev-1"
	for i, a := range attendees {
		a.EventID = event.ID
		a.AccessToken = "tok-" + a.Name
		a.ID = string(rune('a' + i))
	}
	s.created, s.attendees = event, attendees
	return &domain.EventDetails{Event: event, Attendees: attendees, GiftItems: []*domain.GiftItem{}}, nil
}

func (s *importEventService) Publish(ctx context.Context, id string) (*domain.Event, error) {
	s.published = append(s.published, id)
	e := *s.created
	e.Status = domain.EventStatusPublished
	return &e, nil
}

type importGiftItemService struct {
	domain.GiftItemService
	created []*domain.GiftItem
	failOn  string
}

func (s *importGiftItemService) CreateGiftItem(ctx context.Context, item *domain.GiftItem) error {
	if item.Name == s.failOn {
		return domain.ErrInvalidInput
	}
	item.ID = "gift-" + item.Name
	s.created = append(s.created, item)
	return nil
}

func TestParseEventFile(t *testing.T) {
	def, err := parseEventFile(strings.NewReader(sampleEventYAML))
	require.NoError(t, err)

	assert.Equal(t, "Secret Santa 2026", def.Subject)
	require.NotNil(t, def.Description)
	assert.Equal(t, "Office exchange, budget 25 EUR", *def.Description)
	assert.Equal(t, "Carol", def.GiftReceiverName)
	assert.True(t, def.Publish)
	require.Len(t, def.Attendees, 2)
	assert.Equal(t, attendeeFile{Name: "Bob", Email: "bob@example.com"}, def.Attendees[1])
	require.Len(t, def.GiftItems, 2)
	assert.Equal(t, []string{"https://shop.example.com/scarf"}, def.GiftItems[0].StoreURLs)

	price, err := def.GiftItems[0].price()
	require.NoError(t, err)
	assert.Equal(t, "19.9", price.String())

	price, err = def.GiftItems[1].price()
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestParseEventFile_errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "", wantErr: "empty"},
		{name: "missing subject", input: "gift_receiver_name: Carol\n", wantErr: "subject is required"},
		{name: "missing receiver", input: "subject: Party\n", wantErr: "gift_receiver_name is required"},
		{name: "unknown field", input: "subject: Party\ngift_receiver_name: Carol\nbudget: 20\n", wantErr: "parse event file"},
		{name: "malformed", input: "subject: [unterminated\n", wantErr: "parse event file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEventFile(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImportEvent(t *testing.T) {
	def, err := parseEventFile(strings.NewReader(sampleEventYAML))
	require.NoError(t, err)
	events := &importEventService{}
	gifts := &importGiftItemService{}
	now := time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC)

	details, err := importEvent(context.Background(), events, gifts, def, now)
	require.NoError(t, err)

	assert.Equal(t, domain.EventStatusDraft, events.created.Status)
	require.Len(t, events.attendees, 2)
	assert.Equal(t, "ann@example.com", events.attendees[0].Email)
	assert.Equal(t, now, events.attendees[0].CreatedAt)

	require.Len(t, gifts.created, 2)
	assert.Equal(t, "ev-1", gifts.created[0].EventID)
	assert.Equal(t, "19.9", gifts.created[0].Price.String())
	assert.Nil(t, gifts.created[1].Price)
	assert.Equal(t, []string{}, gifts.created[1].StoreURLs)

	assert.Equal(t, []string{"ev-1"}, events.published)
	assert.Equal(t, domain.EventStatusPublished, details.Event.Status)
	assert.Len(t, details.GiftItems, 2)
}

func TestImportEvent_draftStaysDraft(t *testing.T) {
	def := &eventFile{Subject: "Party", GiftReceiverName: "Dan"}
	events := &importEventService{}

	details, err := importEvent(context.Background(), events, &importGiftItemService{}, def, time.Now())
	require.NoError(t, err)
	assert.Empty(t, events.published)
	assert.Equal(t, domain.EventStatusDraft, details.Event.Status)
}

func TestImportEvent_invalidPriceCreatesNothing(t *testing.T) {
	def := &eventFile{
		Subject:          "Party",
		GiftReceiverName: "Dan",
		GiftItems:        []giftItemFile{{Name: "Lamp", Price: "cheap"}},
	}
	events := &importEventService{}

	_, err := importEvent(context.Background(), events, &importGiftItemService{}, def, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid price "cheap"`)
	assert.Nil(t, events.created)
}

func TestImportEvent_giftFailureSkipsPublish(t *testing.T) {
	def := &eventFile{
		Subject:          "Party",
		GiftReceiverName: "Dan",
		Publish:          true,
		GiftItems:        []giftItemFile{{Name: "Lamp"}, {Name: ""}},
	}
	events := &importEventService{}
	gifts := &importGiftItemService{failOn: ""}

	details, err := importEvent(context.Background(), events, gifts, def, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, events.published)
	require.NotNil(t, details)
	assert.Len(t, details.GiftItems, 1)
}
