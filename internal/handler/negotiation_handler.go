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

type NegotiationHandler struct {
	svc service.NegotiationService
}

func NewNegotiationHandler(svc service.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{svc: svc}
}

type NegotiationResponse struct {
	ID                uint64   `json:"id"`
	RequestID         uint64   `json:"requestId"`
	OfferID           uint64   `json:"offerId"`
	RequesterUID      string   `json:"requesterUid"`
	OffererUID        string   `json:"offererUid"`
	Status            string   `json:"status"`
	CurrentPrice      *float64 `json:"currentPrice,omitempty"`
	CurrentCurrency   string   `json:"currentCurrency"`
	PriceDisplay      string   `json:"priceDisplay,omitempty"`
	RequesterAccepted bool     `json:"requesterAccepted"`
	OffererAccepted   bool     `json:"offererAccepted"`
	CreatedAt         string   `json:"createdAt"`
}

type NegotiationMessageRequest struct {
	Type       string   `json:"type"`
	Content    string   `json:"content"`
	PriceOffer *float64 `json:"priceOffer"`
	Currency   string   `json:"currency"`
}

type NegotiationMessageResponse struct {
	ID            uint64   `json:"id"`
	NegotiationID uint64   `json:"negotiationId"`
	SenderUID     string   `json:"senderUid"`
	Type          string   `json:"type"`
	Content       string   `json:"content"`
	PriceOffer    *float64 `json:"priceOffer,omitempty"`
	PriceDisplay  string   `json:"priceDisplay,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	CreatedAt     string   `json:"createdAt"`
}

func toNegotiationResponse(n *model.Negotiation) NegotiationResponse {
	resp := NegotiationResponse{
		ID:                n.ID,
		RequestID:         n.RequestID,
		OfferID:           n.OfferID,
		RequesterUID:      n.RequesterUID,
		OffererUID:        n.OffererUID,
		Status:            string(n.Status),
		CurrentPrice:      n.CurrentPrice,
		CurrentCurrency:   n.CurrentCurrency,
		RequesterAccepted: n.RequesterAccepted,
		OffererAccepted:   n.OffererAccepted,
		CreatedAt:         n.CreatedAt.Format(time.RFC3339),
	}
	if n.CurrentPrice != nil {
		resp.PriceDisplay = currency.Format(*n.CurrentPrice, currency.Unit(n.CurrentCurrency))
	}
	return resp
}

func toNegotiationMessageResponse(m *model.NegotiationMessage) NegotiationMessageResponse {
	resp := NegotiationMessageResponse{
		ID:            m.ID,
		NegotiationID: m.NegotiationID,
		SenderUID:     m.SenderUID,
		Type:          string(m.Type),
		Content:       m.Content,
		PriceOffer:    m.PriceOffer,
		Currency:      m.Currency,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
	if m.PriceOffer != nil {
		resp.PriceDisplay = currency.Format(*m.PriceOffer, currency.Unit(m.Currency))
	}
	return resp
}

func (h *NegotiationHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid negotiation id"))
	}
	n, err := h.svc.Get(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toNegotiationResponse(n))
}

func (h *NegotiationHandler) ListMessages(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid negotiation id"))
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := make([]NegotiationMessageResponse, 0, len(msgs))
	for i := range msgs {
		resp = append(resp, toNegotiationMessageResponse(&msgs[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *NegotiationHandler) PostMessage(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid negotiation id"))
	}
	var body NegotiationMessageRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msg, err := h.svc.PostMessage(c.Request().Context(), service.PostMessageParams{
		NegotiationID: id,
		SenderUID:     uid,
		Type:          model.MessageType(body.Type),
		Content:       body.Content,
		PriceOffer:    body.PriceOffer,
		Currency:      currency.Unit(body.Currency),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toNegotiationMessageResponse(msg))
}
