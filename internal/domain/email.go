package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventPublishedEmailData holds data for the invitation sent when an event is published.
type EventPublishedEmailData struct {
	Email            string
	AttendeeName     string
	Subject          string
	Description      string
	GiftReceiverName string
	EventURL         string
}

// NewGiftItemEmailData holds data for the email sent when a gift is added to a published event.
type NewGiftItemEmailData struct {
	Email            string
	AttendeeName     string
	Subject          string
	GiftReceiverName string
	GiftName         string
	GiftPrice        *decimal.Decimal
	StoreURLs        []string
	EventURL         string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventPublished(ctx context.Context, data *EventPublishedEmailData) error
	SendNewGiftItem(ctx context.Context, data *NewGiftItemEmailData) error
}
