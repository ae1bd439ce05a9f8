package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shwepos/internal/server/middleware"
	"shwepos/internal/stock"
)

type InventoryHandler struct {
	inventory *stock.Inventory
}

func NewInventoryHandler(inventory *stock.Inventory) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

type ListItemsQuery struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	LowStock bool   `form:"low_stock"`
	SortBy   string `form:"sort_by,default=name"`
	Order    string `form:"order,default=asc"`
	Limit    int    `form:"limit,default=50"`
	Offset   int    `form:"offset,default=0"`
}

type RestockRequest struct {
	Quantity int32 `json:"quantity" binding:"required"`
}

func itemParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid item id"))
		return 0, false
	}
	return id, true
}

func inventoryError(c *gin.Context, err error) {
	var notFound *stock.ItemNotFoundError
	var validation *stock.ValidationError
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("inventory operation failed"))
	}
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req stock.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}
	req.OwnerID = middleware.OwnerID(c)

	item, err := h.inventory.CreateItem(c.Request.Context(), req)
	if err != nil {
		inventoryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("item created", item))
}

func (h *InventoryHandler) ListItems(c *gin.Context) {
	var query ListItemsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid query parameters"))
		return
	}

	filter := stock.ItemFilter{
		OwnerID:  middleware.OwnerID(c),
		Category: query.Category,
		Search:   query.Search,
		LowStock: query.LowStock,
		SortBy:   query.SortBy,
		SortDesc: query.Order == "desc",
		Limit:    query.Limit,
		Offset:   query.Offset,
	}

	items, total, err := h.inventory.ListItems(c.Request.Context(), filter)
	if err != nil {
		inventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("items", items, PageMeta{
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}))
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := itemParam(c)
	if !ok {
		return
	}
	item, err := h.inventory.GetItem(c.Request.Context(), id)
	if err != nil {
		inventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("item", item))
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := itemParam(c)
	if !ok {
		return
	}
	var req stock.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	item, err := h.inventory.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		inventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("item updated", item))
}

func (h *InventoryHandler) Restock(c *gin.Context) {
	id, ok := itemParam(c)
	if !ok {
		return
	}
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	item, err := h.inventory.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		inventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("item restocked", item))
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := itemParam(c)
	if !ok {
		return
	}
	if err := h.inventory.DeactivateItem(c.Request.Context(), id); err != nil {
		inventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("item deactivated", nil))
}
