package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"gifttable/config"
	"gifttable/internal/adapters/auth"
	"gifttable/internal/adapters/email"
	"gifttable/internal/domain"
	"gifttable/internal/metrics"
	"gifttable/internal/repository/postgres"
	"gifttable/internal/services"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	verifier domain.TokenVerifier
	notifier *services.Notifier

	auth      domain.AuthService
	events    domain.EventService
	attendees domain.AttendeeService
	giftItems domain.GiftItemService
	claims    domain.ClaimService
}

// newApp loads configuration, connects to the database and wires every service.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configure mailer: %w", err)
	}

	m := metrics.New()

	eventRepo := postgres.NewEventRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	giftItemRepo := postgres.NewGiftItemRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	adminRepo := postgres.NewAdminUserRepository(db)

	tokens := auth.NewAccessTokenGenerator()
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	notifier := services.NewNotifier(attendeeRepo, notificationRepo, emailService, services.NotifierConfig{
		BaseURL:     cfg.BaseURL,
		Concurrency: cfg.NotifyConcurrency,
	}, logger, m)
	gate := services.NewAccessGate(attendeeRepo, eventRepo, cfg.ContextTimeout)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		metrics:  m,
		verifier: auth.NewJWTVerifier(cfg.JWTSecret),
		notifier: notifier,
		auth: services.NewAuthService(adminRepo, auth.NewBcryptHasher(0),
			auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry, cfg.ContextTimeout),
		events: services.NewEventService(eventRepo, attendeeRepo, giftItemRepo, notificationRepo,
			tokens, notifier, cfg.ContextTimeout),
		attendees: services.NewAttendeeService(eventRepo, attendeeRepo, tokens, cfg.ContextTimeout),
		giftItems: services.NewGiftItemService(eventRepo, giftItemRepo, notifier, cfg.ContextTimeout),
		claims:    services.NewClaimService(gate, eventRepo, giftItemRepo, m, cfg.ContextTimeout),
	}, nil
}

// Close waits for pending notifications and closes the database.
func (a *app) Close() error {
	a.notifier.Wait()
	return a.db.Close()
}
