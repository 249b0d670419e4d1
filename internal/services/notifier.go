package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gifttable/internal/domain"
	"gifttable/internal/metrics"
)

// NotifierConfig controls background email delivery.
type NotifierConfig struct {
	// BaseURL prefixes attendee links: <BaseURL>/event/<token>.
	BaseURL string
	// Concurrency bounds parallel sends per notification batch.
	Concurrency int
	// SendTimeout bounds each individual email.
	SendTimeout time.Duration
}

// Notifier emails attendees in the background. Every email is recorded in the
// notification log as sent or failed; failures never reach the caller.
type Notifier struct {
	attendeeRepo     domain.AttendeeRepository
	notificationRepo domain.NotificationRepository
	emailService     domain.EmailService
	cfg              NotifierConfig
	logger           *slog.Logger
	metrics          *metrics.Metrics
	wg               sync.WaitGroup
}

func NewNotifier(attendeeRepo domain.AttendeeRepository,
	notificationRepo domain.NotificationRepository,
	emailService domain.EmailService,
	cfg NotifierConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Notifier {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Notifier{
		attendeeRepo:     attendeeRepo,
		notificationRepo: notificationRepo,
		emailService:     emailService,
		cfg:              cfg,
		logger:           logger,
		metrics:          m,
	}
}

// EventURL is the attendee's personal link to the event.
func (n *Notifier) EventURL(token string) string {
	return n.cfg.BaseURL + "/event/" + token
}

func (n *Notifier) EventPublished(ctx context.Context, event *domain.Event) {
	description := ""
	if event.Description != nil {
		description = *event.Description
	}
	n.dispatch(ctx, event, domain.NotificationEventPublished, func(ctx context.Context, a *domain.Attendee) error {
		return n.emailService.SendEventPublished(ctx, &domain.EventPublishedEmailData{
			Email:            a.Email,
			AttendeeName:     a.Name,
			Subject:          event.Subject,
			Description:      description,
			GiftReceiverName: event.GiftReceiverName,
			EventURL:         n.EventURL(a.AccessToken),
		})
	})
}

func (n *Notifier) GiftItemAdded(ctx context.Context, event *domain.Event, item *domain.GiftItem) {
	n.dispatch(ctx, event, domain.NotificationNewGiftItem, func(ctx context.Context, a *domain.Attendee) error {
		return n.emailService.SendNewGiftItem(ctx, &domain.NewGiftItemEmailData{
			Email:            a.Email,
			AttendeeName:     a.Name,
			Subject:          event.Subject,
			GiftReceiverName: event.GiftReceiverName,
			GiftName:         item.Name,
			GiftPrice:        item.Price,
			StoreURLs:        item.StoreURLs,
			EventURL:         n.EventURL(a.AccessToken),
		})
	})
}

// Wait blocks until every dispatched batch has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// dispatch detaches from the request context so delivery outlives the response.
func (n *Notifier) dispatch(ctx context.Context, event *domain.Event, kind domain.NotificationType, send func(context.Context, *domain.Attendee) error) {
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.fanOut(ctx, event, kind, send)
	}()
}

func (n *Notifier) fanOut(ctx context.Context, event *domain.Event, kind domain.NotificationType, send func(context.Context, *domain.Attendee) error) {
	attendees, err := n.attendeeRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		n.logger.ErrorContext(ctx, "notification: list attendees failed", "event_id", event.ID, "type", kind, "err", err)
		return
	}

	var g errgroup.Group
	g.SetLimit(n.cfg.Concurrency)
	for _, a := range attendees {
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout)
			defer cancel()

			status := domain.NotificationSent
			if err := send(sendCtx, a); err != nil {
				status = domain.NotificationFailed
				n.logger.WarnContext(ctx, "notification: send failed", "event_id", event.ID, "attendee_id", a.ID, "type", kind, "err", err)
			}
			n.record(ctx, event.ID, a.ID, kind, status)
			return nil
		})
	}
	_ = g.Wait()
	n.logger.InfoContext(ctx, "notification batch finished", "event_id", event.ID, "type", kind, "attendees", len(attendees))
}

func (n *Notifier) record(ctx context.Context, eventID, attendeeID string, kind domain.NotificationType, status domain.NotificationStatus) {
	n.metrics.ObserveNotification(string(kind), string(status))
	entry := &domain.Notification{
		EventID:    eventID,
		AttendeeID: &attendeeID,
		Type:       kind,
		Status:     status,
		SentAt:     time.Now(),
	}
	if err := n.notificationRepo.Create(ctx, entry); err != nil {
		n.logger.ErrorContext(ctx, "notification: log entry failed", "event_id", eventID, "attendee_id", attendeeID, "err", err)
	}
}
