package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifttable/internal/delivery/http/controllers"
	"gifttable/internal/delivery/http/helpers"
	"gifttable/internal/delivery/http/middleware"
	"gifttable/internal/domain"
	"gifttable/internal/metrics"
)

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*domain.AdminClaims, error) {
	if token != "good" {
		return nil, domain.ErrUnauthorized
	}
	return &domain.AdminClaims{AdminID: "adm-1", Username: "admin"}, nil
}

// stubEventService only implements ListEvents; other methods panic through the nil embedded interface.
type stubEventService struct {
	domain.EventService
}

func (stubEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.EventSummary, int, error) {
	return []*domain.EventSummary{}, 0, nil
}

type stubClaimService struct {
	domain.ClaimService
}

func (stubClaimService) GetView(ctx context.Context, token string) (*domain.AttendeeView, error) {
	if token != "tok-ann" {
		return nil, domain.ErrNotFound
	}
	return &domain.AttendeeView{Event: domain.PublicEvent{ID: "e1"}}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func newTestRouter(db Pinger, limiter *middleware.RateLimiter) (http.Handler, *metrics.Metrics) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	return NewRouter(RouterConfig{
		Logger:         logger,
		Metrics:        m,
		Verifier:       stubVerifier{},
		RateLimiter:    limiter,
		AllowedOrigins: []string{"https://gifts.example"},
		DB:             db,
		Auth:           controllers.NewAuthController(logger, nil),
		Events:         controllers.NewEventController(logger, stubEventService{}),
		Attendees:      controllers.NewAttendeeController(logger, nil),
		GiftItems:      controllers.NewGiftItemController(logger, nil),
		Public:         controllers.NewPublicController(logger, stubClaimService{}),
	}), m
}

func serve(handler http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Routes(t *testing.T) {
	router, _ := newTestRouter(stubPinger{}, nil)

	tests := []struct {
		name       string
		method     string
		target     string
		token      string
		wantStatus int
	}{
		{name: "admin route without token", method: http.MethodGet, target: "/api/admin/events", wantStatus: http.StatusUnauthorized},
		{name: "admin route with bad token", method: http.MethodGet, target: "/api/admin/events", token: "bad", wantStatus: http.StatusUnauthorized},
		{name: "admin route with token", method: http.MethodGet, target: "/api/admin/events", token: "good", wantStatus: http.StatusOK},
		{name: "register requires admin", method: http.MethodPost, target: "/api/auth/register", wantStatus: http.StatusUnauthorized},
		{name: "attendee view", method: http.MethodGet, target: "/api/attendee/event/tok-ann", wantStatus: http.StatusOK},
		{name: "attendee view unknown token", method: http.MethodGet, target: "/api/attendee/event/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPatch, target: "/api/admin/events", token: "good", wantStatus: http.StatusMethodNotAllowed},
		{name: "health", method: http.MethodGet, target: "/healthz", wantStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, target: "/metrics", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(router, tt.method, tt.target, tt.token)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestRouter_HealthzDatabaseDown(t *testing.T) {
	router, _ := newTestRouter(stubPinger{err: errors.New("connection refused")}, nil)
	rr := serve(router, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, helpers.ErrCodeUnavailable, resp.Error.Code)
}

func TestRouter_RateLimitsAPI(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Requests: 2, Window: time.Hour, PathPrefix: "/api/"})
	router, _ := newTestRouter(stubPinger{}, limiter)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/attendee/event/tok-ann", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/attendee/event/tok-ann", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodGet, "/api/attendee/event/tok-ann", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/healthz", "").Code)
}

func TestRouter_RecordsRoutePattern(t *testing.T) {
	router, m := newTestRouter(stubPinger{}, nil)
	serve(router, http.MethodGet, "/api/attendee/event/tok-ann", "")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), `route="GET /api/attendee/event/{token}",status="200"`)
}
