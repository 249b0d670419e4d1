package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	h "gifttable/internal/delivery/http/helpers"
	"gifttable/internal/domain"
)

// GiftItemRequest is the request body for creating or replacing a gift item.
type GiftItemRequest struct {
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price" swaggertype:"number"`
	StoreURLs []string         `json:"store_urls"`
}

// Validate implements Validator. Price and URL rules are enforced by the service.
func (g GiftItemRequest) Validate() []string {
	if strings.TrimSpace(g.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// GiftItemSuccessResponse is the success response envelope for endpoints returning a gift item.
type GiftItemSuccessResponse struct {
	Data  *domain.GiftItem `json:"data"`
	Error *h.APIError      `json:"error"`
}

type GiftItemController struct {
	Logger  *slog.Logger
	Service domain.GiftItemService
}

func NewGiftItemController(logger *slog.Logger, svc domain.GiftItemService) *GiftItemController {
	return &GiftItemController{
		Logger:  logger,
		Service: svc,
	}
}

// ListGiftItems godoc
// @Summary List gift items of an event
// @Tags gift-items
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the gift items with claim details"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/gift-items [get]
func (c *GiftItemController) ListGiftItems(w http.ResponseWriter, r *http.Request) {
	items, err := c.Service.ListGiftItems(r.Context(), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, items)
}

// CreateGiftItem godoc
// @Summary Add a gift item
// @Description Adds a gift to the event. In a published event every attendee is emailed about it.
// @Tags gift-items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body GiftItemRequest true "Gift item"
// @Success 201 {object} controllers.GiftItemSuccessResponse "data contains the created gift item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/gift-items [post]
func (c *GiftItemController) CreateGiftItem(w http.ResponseWriter, r *http.Request) {
	var req GiftItemRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	item := domain.NewGiftItem(r.PathValue("eventID"), req.Name, req.Price, req.StoreURLs, time.Now())
	if err := c.Service.CreateGiftItem(r.Context(), item); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, item)
}

// UpdateGiftItem godoc
// @Summary Update a gift item
// @Description Replaces name, price and store links. The claim is untouched.
// @Tags gift-items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param giftItemID path string true "Gift item ID (UUID)"
// @Param body body GiftItemRequest true "Gift item"
// @Success 200 {object} controllers.GiftItemSuccessResponse "data contains the updated gift item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/gift-items/{giftItemID} [put]
func (c *GiftItemController) UpdateGiftItem(w http.ResponseWriter, r *http.Request) {
	var req GiftItemRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	item, err := c.Service.UpdateGiftItem(r.Context(), r.PathValue("giftItemID"), req.Name, req.Price, req.StoreURLs)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, item)
}

// DeleteGiftItem godoc
// @Summary Delete a gift item
// @Tags gift-items
// @Security BearerAuth
// @Param giftItemID path string true "Gift item ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: lifecycle_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/gift-items/{giftItemID} [delete]
func (c *GiftItemController) DeleteGiftItem(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteGiftItem(r.Context(), r.PathValue("giftItemID")); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
