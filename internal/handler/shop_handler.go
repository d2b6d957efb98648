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

type ShopHandler struct {
	svc service.ShopService
}

func NewShopHandler(svc service.ShopService) *ShopHandler {
	return &ShopHandler{svc: svc}
}

type ShopBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	World       string `json:"world"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Z           int    `json:"z"`
}

type ShopResponse struct {
	ID          uint64 `json:"id"`
	OwnerUID    string `json:"ownerUid"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	World       string `json:"world"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Z           int    `json:"z"`
	CreatedAt   string `json:"createdAt"`
}

type ListingBody struct {
	ItemID    uint64  `json:"itemId"`
	UnitPrice float64 `json:"unitPrice"`
	Currency  string  `json:"currency"`
	Stock     uint    `json:"stock"`
}

type ListingResponse struct {
	ID           uint64  `json:"id"`
	ShopID       uint64  `json:"shopId"`
	ItemID       uint64  `json:"itemId"`
	UnitPrice    float64 `json:"unitPrice"`
	PriceDisplay string  `json:"priceDisplay"`
	Currency     string  `json:"currency"`
	Stock        uint    `json:"stock"`
}

type ShopDetailResponse struct {
	Shop     ShopResponse      `json:"shop"`
	Listings []ListingResponse `json:"listings"`
}

type ShopListResponse struct {
	Shops []ShopResponse `json:"shops"`
	Total int64          `json:"total"`
}

func toShopResponse(s *model.Shop) ShopResponse {
	return ShopResponse{
		ID:          s.ID,
		OwnerUID:    s.OwnerUID,
		Name:        s.Name,
		Description: s.Description,
		World:       s.World,
		X:           s.X,
		Y:           s.Y,
		Z:           s.Z,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func toListingResponse(l *model.ShopListing) ListingResponse {
	return ListingResponse{
		ID:           l.ID,
		ShopID:       l.ShopID,
		ItemID:       l.ItemID,
		UnitPrice:    l.UnitPrice,
		PriceDisplay: currency.Format(l.UnitPrice, currency.Unit(l.Currency)),
		Currency:     l.Currency,
		Stock:        l.Stock,
	}
}

func (h *ShopHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body ShopBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	shop, err := h.svc.Create(c.Request().Context(), uid, service.ShopParams{
		Name:        body.Name,
		Description: body.Description,
		World:       body.World,
		X:           body.X,
		Y:           body.Y,
		Z:           body.Z,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toShopResponse(shop))
}

func (h *ShopHandler) Update(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid shop id"))
	}
	var body ShopBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	shop, err := h.svc.Update(c.Request().Context(), id, uid, service.ShopParams{
		Name:        body.Name,
		Description: body.Description,
		World:       body.World,
		X:           body.X,
		Y:           body.Y,
		Z:           body.Z,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toShopResponse(shop))
}

func (h *ShopHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid shop id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ShopHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid shop id"))
	}
	detail, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := ShopDetailResponse{
		Shop:     toShopResponse(detail.Shop),
		Listings: make([]ListingResponse, 0, len(detail.Listings)),
	}
	for i := range detail.Listings {
		resp.Listings = append(resp.Listings, toListingResponse(&detail.Listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ShopHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	shops, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch shops"))
	}
	resp := ShopListResponse{
		Shops: make([]ShopResponse, 0, len(shops)),
		Total: total,
	}
	for i := range shops {
		resp.Shops = append(resp.Shops, toShopResponse(&shops[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ShopHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	shops, err := h.svc.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch shops"))
	}
	resp := make([]ShopResponse, 0, len(shops))
	for i := range shops {
		resp = append(resp, toShopResponse(&shops[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ShopHandler) AddListing(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	shopID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid shop id"))
	}
	var body ListingBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	l, err := h.svc.AddListing(c.Request().Context(), shopID, uid, service.ListingParams{
		ItemID:    body.ItemID,
		UnitPrice: body.UnitPrice,
		Currency:  currency.Unit(body.Currency),
		Stock:     body.Stock,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

func (h *ShopHandler) UpdateListing(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listingID, err := strconv.ParseUint(c.Param("listingId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	var body ListingBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	l, err := h.svc.UpdateListing(c.Request().Context(), listingID, uid, service.ListingParams{
		ItemID:    body.ItemID,
		UnitPrice: body.UnitPrice,
		Currency:  currency.Unit(body.Currency),
		Stock:     body.Stock,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

func (h *ShopHandler) RemoveListing(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listingID, err := strconv.ParseUint(c.Param("listingId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	if err := h.svc.RemoveListing(c.Request().Context(), listingID, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
