package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"gifttable/internal/domain"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// maxPrice is the first amount a NUMERIC(10,2) column cannot hold.
var maxPrice = decimal.New(1, 8)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// normalizeEventFields trims the descriptive fields of an event and rejects blanks.
// An empty description becomes nil.
func normalizeEventFields(subject string, description *string, giftReceiverName string) (string, *string, string, error) {
	subject = strings.TrimSpace(subject)
	giftReceiverName = strings.TrimSpace(giftReceiverName)
	if subject == "" {
		return "", nil, "", invalidInput("subject is required")
	}
	if giftReceiverName == "" {
		return "", nil, "", invalidInput("gift receiver name is required")
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		if d == "" {
			description = nil
		} else {
			description = &d
		}
	}
	return subject, description, giftReceiverName, nil
}

func normalizeAttendee(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return "", "", invalidInput("attendee name is required")
	}
	if !emailRegexp.MatchString(email) {
		return "", "", invalidInput("valid attendee email is required: %q", email)
	}
	return name, email, nil
}

func normalizeGiftItem(name string, price *decimal.Decimal, storeURLs []string) (string, *decimal.Decimal, []string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, nil, invalidInput("gift item name is required")
	}
	if price != nil {
		if price.IsNegative() {
			return "", nil, nil, invalidInput("price must not be negative")
		}
		p := price.Round(2)
		if p.GreaterThanOrEqual(maxPrice) {
			return "", nil, nil, invalidInput("price must be below %s", maxPrice)
		}
		price = &p
	}
	urls := make([]string, 0, len(storeURLs))
	for _, raw := range storeURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", nil, nil, invalidInput("invalid store url %q", raw)
		}
		urls = append(urls, raw)
	}
	return name, price, urls, nil
}
