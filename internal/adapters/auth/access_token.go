package auth

import (
	"fmt"

	"github.com/google/uuid"

	"gifttable/internal/domain"
)

type uuidTokenGenerator struct{}

// NewAccessTokenGenerator returns an AccessTokenGenerator producing random
// version 4 UUIDs for attendee links.
func NewAccessTokenGenerator() domain.AccessTokenGenerator {
	return uuidTokenGenerator{}
}

func (uuidTokenGenerator) NewAccessToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return id.String(), nil
}
