package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	h "gifttable/internal/delivery/http/helpers"
	"gifttable/internal/domain"
)

// AttendeeInput is one invitee in a create-event or add-attendees request.
type AttendeeInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// attendeesFromInput builds attendees without event or token; the service assigns both.
func attendeesFromInput(in []AttendeeInput, now time.Time) []*domain.Attendee {
	out := make([]*domain.Attendee, 0, len(in))
	for _, a := range in {
		out = append(out, domain.NewAttendee("", a.Name, a.Email, "", now))
	}
	return out
}

// CreateEventRequest is the request body for POST /api/admin/events. Attendees are optional.
type CreateEventRequest struct {
	Subject          string          `json:"subject"`
	Description      *string         `json:"description"`
	GiftReceiverName string          `json:"gift_receiver_name"`
	Attendees        []AttendeeInput `json:"attendees"`
}

// Validate implements Validator. Returns error messages for required fields.
func (c CreateEventRequest) Validate() []string {
	return validateEventFields(c.Subject, c.GiftReceiverName)
}

// UpdateEventRequest is the request body for PUT /api/admin/events/{eventID}.
type UpdateEventRequest struct {
	Subject          string  `json:"subject"`
	Description      *string `json:"description"`
	GiftReceiverName string  `json:"gift_receiver_name"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	return validateEventFields(u.Subject, u.GiftReceiverName)
}

func validateEventFields(subject, giftReceiverName string) []string {
	var errs []string
	if strings.TrimSpace(subject) == "" {
		errs = append(errs, "subject is required")
	}
	if strings.TrimSpace(giftReceiverName) == "" {
		errs = append(errs, "gift_receiver_name is required")
	}
	return errs
}

// ListEventsResponse is the response body for GET /api/admin/events.
type ListEventsResponse struct {
	Events     []*domain.EventSummary `json:"events"`
	Pagination h.PaginationMeta       `json:"pagination"`
}

// EventDetailsSuccessResponse is the success response envelope for endpoints returning event details.
type EventDetailsSuccessResponse struct {
	Data  *domain.EventDetails `json:"data"`
	Error *h.APIError          `json:"error"`
}

// EventSuccessResponse is the success response envelope for endpoints returning a single event.
type EventSuccessResponse struct {
	Data  *domain.Event `json:"data"`
	Error *h.APIError   `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Paginated list of all events, newest first, with attendee and gift counts.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Events: events, Pagination: h.NewPaginationMeta(params, total)})
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a draft event, optionally with its initial attendees. Each attendee gets a unique access token.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventDetailsSuccessResponse "data contains the event and its attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	event := domain.NewEvent(req.Subject, req.Description, req.GiftReceiverName, now)
	details, err := c.Service.CreateEvent(r.Context(), event, attendeesFromInput(req.Attendees, now))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, details)
}

// GetEvent godoc
// @Summary Get event details
// @Description Returns the event with its attendees and gift items, including who claimed each item.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse "data contains event, attendees and gift_items"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	details, err := c.Service.GetEventDetails(r.Context(), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, details)
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Replaces subject, description and gift receiver name. Archived events cannot be changed.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Event fields"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), r.PathValue("eventID"), req.Subject, req.Description, req.GiftReceiverName)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// PublishEvent godoc
// @Summary Publish an event
// @Description Moves a draft event to published and emails every attendee their personal link in the background.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the published event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/publish [post]
func (c *EventController) PublishEvent(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Publish)
}

// RevertEvent godoc
// @Summary Revert an event to draft
// @Description Moves a published event back to draft. Claims are kept but frozen.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the draft event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/draft [post]
func (c *EventController) RevertEvent(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.RevertToDraft)
}

// ArchiveEvent godoc
// @Summary Archive an event
// @Description Closes the event for good. Attendee links stop working; admin reads still succeed.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the archived event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/archive [post]
func (c *EventController) ArchiveEvent(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.Archive)
}

func (c *EventController) transition(w http.ResponseWriter, r *http.Request, move func(context.Context, string) (*domain.Event, error)) {
	event, err := move(r.Context(), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// CloneEvent godoc
// @Summary Clone an event
// @Description Creates a new draft event with the same fields and attendees (with fresh access tokens) and no gift items. Works from any status.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.EventDetailsSuccessResponse "data contains the new event and its attendees"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/clone [post]
func (c *EventController) CloneEvent(w http.ResponseWriter, r *http.Request) {
	details, err := c.Service.Clone(r.Context(), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, details)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event with its attendees and gift items. A published event requires confirm=true.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param confirm query bool false "Confirm deletion of a published event"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: confirmation_required"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	confirmed := false
	if s := r.URL.Query().Get("confirm"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "confirm must be a boolean")
			return
		}
		confirmed = v
	}
	if err := c.Service.DeleteEvent(r.Context(), r.PathValue("eventID"), confirmed); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotifications godoc
// @Summary List notification log
// @Description Returns every email sent for the event, newest first, with its delivery status.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the notifications"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/notifications [get]
func (c *EventController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := c.Service.ListNotifications(r.Context(), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, notifications)
}
