package services

import (
	"context"
	"fmt"
	"log/slog"

	"gifttable/internal/domain"
)

const (
	templateEventPublished = "event_published"
	templateNewGiftItem    = "new_gift_item"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendEventPublished sends the invitation carrying the attendee's personal link.
func (s *emailService) SendEventPublished(ctx context.Context, data *domain.EventPublishedEmailData) error {
	if data == nil {
		return fmt.Errorf("event published email data is nil")
	}
	return s.send(ctx, templateEventPublished, data.Email, data)
}

// SendNewGiftItem announces a gift added to a published event.
func (s *emailService) SendNewGiftItem(ctx context.Context, data *domain.NewGiftItemEmailData) error {
	if data == nil {
		return fmt.Errorf("new gift item email data is nil")
	}
	return s.send(ctx, templateNewGiftItem, data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
