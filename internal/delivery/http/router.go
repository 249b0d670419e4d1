package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"gifttable/internal/delivery/http/controllers"
	h "gifttable/internal/delivery/http/helpers"
	"gifttable/internal/delivery/http/middleware"
	"gifttable/internal/domain"
	"gifttable/internal/metrics"
)

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Verifier       domain.TokenVerifier
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	DB             Pinger

	Auth      *controllers.AuthController
	Events    *controllers.EventController
	Attendees *controllers.AttendeeController
	GiftItems *controllers.GiftItemController
	Public    *controllers.PublicController
}

// NewRouter initializes the HTTP router with all application routes and wraps it in the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(cfg.Verifier, cfg.Logger)

	// Auth
	mux.HandleFunc("POST /api/auth/login", cfg.Auth.Login)
	mux.HandleFunc("POST /api/auth/register", admin(cfg.Auth.Register))
	mux.HandleFunc("GET /api/auth/verify", admin(cfg.Auth.Verify))
	mux.HandleFunc("POST /api/auth/change-password", admin(cfg.Auth.ChangePassword))

	// Admin: events
	mux.HandleFunc("GET /api/admin/events", admin(cfg.Events.ListEvents))
	mux.HandleFunc("POST /api/admin/events", admin(cfg.Events.CreateEvent))
	mux.HandleFunc("GET /api/admin/events/{eventID}", admin(cfg.Events.GetEvent))
	mux.HandleFunc("PUT /api/admin/events/{eventID}", admin(cfg.Events.UpdateEvent))
	mux.HandleFunc("DELETE /api/admin/events/{eventID}", admin(cfg.Events.DeleteEvent))
	mux.HandleFunc("POST /api/admin/events/{eventID}/publish", admin(cfg.Events.PublishEvent))
	mux.HandleFunc("POST /api/admin/events/{eventID}/draft", admin(cfg.Events.RevertEvent))
	mux.HandleFunc("POST /api/admin/events/{eventID}/archive", admin(cfg.Events.ArchiveEvent))
	mux.HandleFunc("POST /api/admin/events/{eventID}/clone", admin(cfg.Events.CloneEvent))
	mux.HandleFunc("GET /api/admin/events/{eventID}/notifications", admin(cfg.Events.ListNotifications))

	// Admin: attendees
	mux.HandleFunc("POST /api/admin/events/{eventID}/attendees", admin(cfg.Attendees.AddAttendees))
	mux.HandleFunc("PUT /api/admin/attendees/{attendeeID}", admin(cfg.Attendees.UpdateAttendee))
	mux.HandleFunc("DELETE /api/admin/attendees/{attendeeID}", admin(cfg.Attendees.DeleteAttendee))

	// Admin: gift items
	mux.HandleFunc("GET /api/admin/events/{eventID}/gift-items", admin(cfg.GiftItems.ListGiftItems))
	mux.HandleFunc("POST /api/admin/events/{eventID}/gift-items", admin(cfg.GiftItems.CreateGiftItem))
	mux.HandleFunc("PUT /api/admin/gift-items/{giftItemID}", admin(cfg.GiftItems.UpdateGiftItem))
	mux.HandleFunc("DELETE /api/admin/gift-items/{giftItemID}", admin(cfg.GiftItems.DeleteGiftItem))

	// Attendee (token in path)
	mux.HandleFunc("GET /api/attendee/event/{token}", cfg.Public.GetEvent)
	mux.HandleFunc("POST /api/attendee/select/{token}", cfg.Public.SelectGift)
	mux.HandleFunc("POST /api/attendee/unselect/{token}", cfg.Public.UnselectGift)
	mux.HandleFunc("GET /api/attendee/selected/{token}", cfg.Public.ListSelected)

	// Ops
	mux.HandleFunc("GET /healthz", healthz(cfg.DB))
	mux.Handle("GET /metrics", cfg.Metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.Metrics(cfg.Metrics, handler)
	if cfg.RateLimiter != nil {
		handler = cfg.RateLimiter.Middleware(handler)
	}
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.SecurityHeaders(handler)
	return middleware.LoggingMiddleware(cfg.Logger, handler)
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			h.WriteJSONSuccess(w, http.StatusOK, healthResponse{Status: "ok", Database: "unknown"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeUnavailable, "database unreachable")
			return
		}
		h.WriteJSONSuccess(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
	}
}
