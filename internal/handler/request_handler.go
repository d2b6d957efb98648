package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
	"github.com/ktsuchiya/blockmarket-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type RequestHandler struct {
	svc service.RequestService
}

func NewRequestHandler(svc service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

type RequestBody struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	ItemID         *uint64  `json:"itemId"`
	ItemQuantity   *uint    `json:"itemQuantity"`
	SuggestedPrice *float64 `json:"suggestedPrice"`
	Currency       string   `json:"currency"`
}

type RequestResponse struct {
	ID             uint64   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	ItemID         *uint64  `json:"itemId,omitempty"`
	ItemQuantity   *uint    `json:"itemQuantity,omitempty"`
	SuggestedPrice *float64 `json:"suggestedPrice,omitempty"`
	PriceDisplay   string   `json:"priceDisplay,omitempty"`
	Currency       string   `json:"currency"`
	Status         string   `json:"status"`
	RequesterUID   string   `json:"requesterUid"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
	CompletedAt    *string  `json:"completedAt,omitempty"`
}

type RequestDetailResponse struct {
	Request     RequestResponse      `json:"request"`
	Offers      []OfferResponse      `json:"offers"`
	Negotiation *NegotiationResponse `json:"negotiation,omitempty"`
}

type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int64             `json:"total"`
}

func toRequestResponse(r *model.Request) RequestResponse {
	resp := RequestResponse{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Type:           string(r.Type),
		ItemID:         r.ItemID,
		ItemQuantity:   r.ItemQuantity,
		SuggestedPrice: r.SuggestedPrice,
		Currency:       r.Currency,
		Status:         string(r.Status),
		RequesterUID:   r.RequesterUID,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
	}
	if r.SuggestedPrice != nil {
		resp.PriceDisplay = currency.Format(*r.SuggestedPrice, currency.Unit(r.Currency))
	}
	if r.CompletedAt != nil {
		val := r.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &val
	}
	return resp
}

func (h *RequestHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body RequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	req, err := h.svc.Create(c.Request().Context(), service.CreateRequestParams{
		Title:          body.Title,
		Description:    body.Description,
		Type:           model.RequestType(body.Type),
		ItemID:         body.ItemID,
		ItemQuantity:   body.ItemQuantity,
		SuggestedPrice: body.SuggestedPrice,
		Currency:       currency.Unit(body.Currency),
		RequesterUID:   uid,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toRequestResponse(req))
}

func (h *RequestHandler) Update(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	var body RequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	req, err := h.svc.Update(c.Request().Context(), id, uid, service.UpdateRequestParams{
		Title:          body.Title,
		Description:    body.Description,
		Type:           model.RequestType(body.Type),
		ItemID:         body.ItemID,
		ItemQuantity:   body.ItemQuantity,
		SuggestedPrice: body.SuggestedPrice,
		Currency:       currency.Unit(body.Currency),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRequestResponse(req))
}

func (h *RequestHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RequestHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	f := repository.RequestFilter{
		Status:       model.RequestStatus(c.QueryParam("status")),
		Type:         model.RequestType(c.QueryParam("type")),
		RequesterUID: c.QueryParam("requester"),
		Limit:        limit,
		Offset:       offset,
	}
	list, total, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch requests"))
	}
	resp := RequestListResponse{
		Requests: make([]RequestResponse, 0, len(list)),
		Total:    total,
	}
	for i := range list {
		resp.Requests = append(resp.Requests, toRequestResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, total, err := h.svc.List(c.Request().Context(), repository.RequestFilter{RequesterUID: uid})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch requests"))
	}
	resp := RequestListResponse{
		Requests: make([]RequestResponse, 0, len(list)),
		Total:    total,
	}
	for i := range list {
		resp.Requests = append(resp.Requests, toRequestResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	detail, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := RequestDetailResponse{
		Request: toRequestResponse(detail.Request),
		Offers:  make([]OfferResponse, 0, len(detail.Offers)),
	}
	for i := range detail.Offers {
		resp.Offers = append(resp.Offers, toOfferResponse(&detail.Offers[i]))
	}
	if detail.Negotiation != nil {
		n := toNegotiationResponse(detail.Negotiation)
		resp.Negotiation = &n
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) Cancel(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	req, err := h.svc.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRequestResponse(req))
}

func (h *RequestHandler) Complete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	req, err := h.svc.Complete(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRequestResponse(req))
}
