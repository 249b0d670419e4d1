package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "gifttable/internal/delivery/http/helpers"
	"gifttable/internal/domain"
)

// SelectGiftRequest is the request body for the select and unselect endpoints.
type SelectGiftRequest struct {
	GiftItemID string `json:"gift_item_id"`
}

// Validate implements Validator.
func (s SelectGiftRequest) Validate() []string {
	if strings.TrimSpace(s.GiftItemID) == "" {
		return []string{"gift_item_id is required"}
	}
	return nil
}

// AttendeeViewSuccessResponse is the success response envelope for attendee view endpoints.
type AttendeeViewSuccessResponse struct {
	Data  *domain.AttendeeView `json:"data"`
	Error *h.APIError          `json:"error"`
}

// PublicController serves the attendee pages. The access token in the path is the only credential.
type PublicController struct {
	Logger  *slog.Logger
	Service domain.ClaimService
}

func NewPublicController(logger *slog.Logger, svc domain.ClaimService) *PublicController {
	return &PublicController{
		Logger:  logger,
		Service: svc,
	}
}

// GetEvent godoc
// @Summary Open the attendee view
// @Description Returns the event, the attendee, every gift item with its claim state, and the items this attendee selected.
// @Tags attendee
// @Produce json
// @Param token path string true "Attendee access token"
// @Success 200 {object} controllers.AttendeeViewSuccessResponse "data contains the attendee view"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: event_gone"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/event/{token} [get]
func (c *PublicController) GetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.GetView(r.Context(), r.PathValue("token"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, view)
}

// SelectGift godoc
// @Summary Claim a gift item
// @Description Reserves the gift for this attendee. Exactly one of several concurrent claims succeeds; the others get claim_conflict.
// @Tags attendee
// @Accept json
// @Produce json
// @Param token path string true "Attendee access token"
// @Param body body SelectGiftRequest true "Gift to claim"
// @Success 200 {object} controllers.AttendeeViewSuccessResponse "data contains the refreshed attendee view"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: claim_conflict or lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/select/{token} [post]
func (c *PublicController) SelectGift(w http.ResponseWriter, r *http.Request) {
	var req SelectGiftRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.Claim(r.Context(), r.PathValue("token"), req.GiftItemID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, view)
}

// UnselectGift godoc
// @Summary Release a gift item
// @Description Gives back a gift this attendee claimed.
// @Tags attendee
// @Accept json
// @Produce json
// @Param token path string true "Attendee access token"
// @Param body body SelectGiftRequest true "Gift to release"
// @Success 200 {object} controllers.AttendeeViewSuccessResponse "data contains the refreshed attendee view"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the claimant)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/unselect/{token} [post]
func (c *PublicController) UnselectGift(w http.ResponseWriter, r *http.Request) {
	var req SelectGiftRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.Release(r.Context(), r.PathValue("token"), req.GiftItemID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, view)
}

// ListSelected godoc
// @Summary List my selected gifts
// @Tags attendee
// @Produce json
// @Param token path string true "Attendee access token"
// @Success 200 {object} helpers.APIResponse "data contains the gift items claimed by this attendee"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: event_gone"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/selected/{token} [get]
func (c *PublicController) ListSelected(w http.ResponseWriter, r *http.Request) {
	items, err := c.Service.ListClaimed(r.Context(), r.PathValue("token"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, items)
}
