package handler

import (
	"net/http"
	"strconv"

	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ItemHandler struct {
	svc service.ItemService
}

func NewItemHandler(svc service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type ItemResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	RegistryKey string `json:"registryKey"`
	ModID       string `json:"modId"`
	StackSize   uint   `json:"stackSize"`
}

type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int64          `json:"total"`
}

func toItemResponse(item *model.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		RegistryKey: item.RegistryKey,
		ModID:       item.ModID,
		StackSize:   item.StackSize,
	}
}

func (h *ItemHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

type RegisterItemRequest struct {
	Name        string `json:"name"`
	RegistryKey string `json:"registryKey"`
	ModID       string `json:"modId"`
	StackSize   uint   `json:"stackSize"`
}

// Register lets a player add a catalog entry that the importer missed, so
// an item request is never blocked on an incomplete catalog.
func (h *ItemHandler) Register(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body RegisterItemRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	item, err := h.svc.Register(c.Request().Context(), body.Name, body.RegistryKey, body.ModID, body.StackSize)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toItemResponse(item))
}

func (h *ItemHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	items, total, err := h.svc.List(c.Request().Context(), limit, offset, c.QueryParam("mod"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch items"))
	}
	resp := ItemListResponse{
		Items: make([]ItemResponse, 0, len(items)),
		Total: total,
	}
	for i := range items {
		resp.Items = append(resp.Items, toItemResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
