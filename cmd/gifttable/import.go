package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gifttable/internal/domain"
)

// eventFile is the YAML definition accepted by the import command.
type eventFile struct {
	Subject          string         `yaml:"subject"`
	Description      *string        `yaml:"description"`
	GiftReceiverName string         `yaml:"gift_receiver_name"`
	Publish          bool           `yaml:"publish"`
	Attendees        []attendeeFile `yaml:"attendees"`
	GiftItems        []giftItemFile `yaml:"gift_items"`
}

type attendeeFile struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type giftItemFile struct {
	Name string `yaml:"name"`
	// Price is decimal text; empty means no price.
	Price     string   `yaml:"price"`
	StoreURLs []string `yaml:"store_urls"`
}

func parseEventFile(r io.Reader) (*eventFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def eventFile
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("event file is empty")
		}
		return nil, fmt.Errorf("parse event file: %w", err)
	}
	if strings.TrimSpace(def.Subject) == "" {
		return nil, errors.New("subject is required")
	}
	if strings.TrimSpace(def.GiftReceiverName) == "" {
		return nil, errors.New("gift_receiver_name is required")
	}
	return &def, nil
}

func (f giftItemFile) price() (*decimal.Decimal, error) {
	if strings.TrimSpace(f.Price) == "" {
		return nil, nil
	}
	p, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return nil, fmt.Errorf("gift item %q: invalid price %q", f.Name, f.Price)
	}
	return &p, nil
}

// importEvent creates the event with its attendees, adds the gift items while
// the event is still a draft and publishes it last if asked to.
func importEvent(ctx context.Context, events domain.EventService, giftItems domain.GiftItemService, def *eventFile, now time.Time) (*domain.EventDetails, error) {
	prices := make([]*decimal.Decimal, len(def.GiftItems))
	for i, g := range def.GiftItems {
		p, err := g.price()
		if err != nil {
			return nil, err
		}
		prices[i] = p
	}

	attendees := make([]*domain.Attendee, 0, len(def.Attendees))
	for _, a := range def.Attendees {
		attendees = append(attendees, domain.NewAttendee("", a.Name, a.Email, "", now))
	}
	details, err := events.CreateEvent(ctx, domain.NewEvent(def.Subject, def.Description, def.GiftReceiverName, now), attendees)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	for i, g := range def.GiftItems {
		item := domain.NewGiftItem(details.Event.ID, g.Name, prices[i], g.StoreURLs, now)
		if err := giftItems.CreateGiftItem(ctx, item); err != nil {
			return details, fmt.Errorf("gift item %q: %w", g.Name, err)
		}
		details.GiftItems = append(details.GiftItems, item)
	}

	if def.Publish {
		event, err := events.Publish(ctx, details.Event.ID)
		if err != nil {
			return details, fmt.Errorf("publish event: %w", err)
		}
		details.Event = event
	}
	return details, nil
}

func newImportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create an event from a YAML definition",
		Long: `Create an event with its attendees and gift items from a YAML file.

Set publish: true in the file to publish the event and email every attendee
their personal link once everything is in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			def, err := parseEventFile(f)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			details, err := importEvent(cmd.Context(), a.events, a.giftItems, def, time.Now())
			if err != nil {
				return err
			}
			cmd.Printf("imported event %s (%s): %d attendees, %d gift items\n",
				details.Event.ID, details.Event.Status, len(details.Attendees), len(details.GiftItems))
			for _, att := range details.Attendees {
				cmd.Printf("  %s <%s>: %s/event/%s\n", att.Name, att.Email, a.cfg.BaseURL, att.AccessToken)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the event YAML file")

	return cmd
}
