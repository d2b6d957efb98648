package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type OfferHandler struct {
	svc service.OfferService
}

func NewOfferHandler(svc service.OfferService) *OfferHandler {
	return &OfferHandler{svc: svc}
}

type CreateOfferRequest struct {
	Price    *float64 `json:"price"`
	Currency string   `json:"currency"`
	Message  string   `json:"message"`
}

type OfferResponse struct {
	ID           uint64   `json:"id"`
	RequestID    uint64   `json:"requestId"`
	OffererUID   string   `json:"offererUid"`
	Price        *float64 `json:"price,omitempty"`
	PriceDisplay string   `json:"priceDisplay,omitempty"`
	Currency     string   `json:"currency"`
	Message      string   `json:"message,omitempty"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"createdAt"`
}

func toOfferResponse(o *model.Offer) OfferResponse {
	resp := OfferResponse{
		ID:         o.ID,
		RequestID:  o.RequestID,
		OffererUID: o.OffererUID,
		Price:      o.Price,
		Currency:   o.Currency,
		Message:    o.Message,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	if o.Price != nil {
		resp.PriceDisplay = currency.Format(*o.Price, currency.Unit(o.Currency))
	}
	return resp
}

func (h *OfferHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	var body CreateOfferRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	offer, err := h.svc.Create(c.Request().Context(), requestID, uid, body.Price, currency.Unit(body.Currency), body.Message)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toOfferResponse(offer))
}

func (h *OfferHandler) ListByRequest(c echo.Context) error {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	offers, err := h.svc.ListByRequest(c.Request().Context(), requestID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch offers"))
	}
	resp := make([]OfferResponse, 0, len(offers))
	for i := range offers {
		resp = append(resp, toOfferResponse(&offers[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OfferHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	offers, err := h.svc.ListByOfferer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch offers"))
	}
	resp := make([]OfferResponse, 0, len(offers))
	for i := range offers {
		resp = append(resp, toOfferResponse(&offers[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OfferHandler) transition(c echo.Context, target model.OfferStatus) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	offerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid offer id"))
	}
	offer, err := h.svc.Transition(c.Request().Context(), offerID, uid, target)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toOfferResponse(offer))
}

func (h *OfferHandler) Accept(c echo.Context) error {
	return h.transition(c, model.OfferStatusAccepted)
}

func (h *OfferHandler) Reject(c echo.Context) error {
	return h.transition(c, model.OfferStatusRejected)
}

func (h *OfferHandler) Withdraw(c echo.Context) error {
	return h.transition(c, model.OfferStatusWithdrawn)
}
