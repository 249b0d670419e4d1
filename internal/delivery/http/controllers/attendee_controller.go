package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "gifttable/internal/delivery/http/helpers"
	"gifttable/internal/domain"
)

// AddAttendeesRequest is the request body for POST /api/admin/events/{eventID}/attendees.
type AddAttendeesRequest struct {
	Attendees []AttendeeInput `json:"attendees"`
}

// Validate implements Validator.
func (a AddAttendeesRequest) Validate() []string {
	if len(a.Attendees) == 0 {
		return []string{"attendees must not be empty"}
	}
	return nil
}

// UpdateAttendeeRequest is the request body for PUT /api/admin/attendees/{attendeeID}.
type UpdateAttendeeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements Validator.
func (u UpdateAttendeeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// AddAttendees godoc
// @Summary Add attendees to an event
// @Description Adds invitees in bulk. Each gets a unique access token. Not allowed on archived events.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AddAttendeesRequest true "Attendees"
// @Success 201 {object} helpers.APIResponse "data contains the created attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/attendees [post]
func (c *AttendeeController) AddAttendees(w http.ResponseWriter, r *http.Request) {
	var req AddAttendeesRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	attendees, err := c.Service.AddAttendees(r.Context(), r.PathValue("eventID"), attendeesFromInput(req.Attendees, time.Now()))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, attendees)
}

// UpdateAttendee godoc
// @Summary Update an attendee
// @Description Changes an attendee's name and email. The access token never changes.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Param body body UpdateAttendeeRequest true "Attendee fields"
// @Success 200 {object} helpers.APIResponse "data contains the updated attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/attendees/{attendeeID} [put]
func (c *AttendeeController) UpdateAttendee(w http.ResponseWriter, r *http.Request) {
	var req UpdateAttendeeRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee, err := c.Service.UpdateAttendee(r.Context(), r.PathValue("attendeeID"), req.Name, req.Email)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// DeleteAttendee godoc
// @Summary Remove an attendee
// @Description Removes the attendee. Items they claimed become unclaimed.
// @Tags attendees
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/attendees/{attendeeID} [delete]
func (c *AttendeeController) DeleteAttendee(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteAttendee(r.Context(), r.PathValue("attendeeID")); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
