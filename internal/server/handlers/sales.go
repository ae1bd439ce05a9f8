package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shwepos/internal/sales"
	"shwepos/internal/stock"
)

type SalesHandler struct {
	service *sales.Service
}

func NewSalesHandler(service *sales.Service) *SalesHandler {
	return &SalesHandler{service: service}
}

type ListSalesQuery struct {
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	PaymentMethod string `form:"payment_method"`
	OwnerID       int64  `form:"owner_id"`
	IsPaid        *bool  `form:"is_paid"`
	Limit         int    `form:"limit,default=50"`
	Offset        int    `form:"offset,default=0"`
}

func saleParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid sale id"))
		return 0, false
	}
	return id, true
}

func saleError(c *gin.Context, err error) {
	var validation *sales.ValidationError
	var notFound *stock.ItemNotFoundError
	var insufficient *stock.InsufficientStockError
	switch {
	case errors.As(err, &validation),
		errors.As(err, &notFound),
		errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
	case errors.Is(err, sales.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, errorResponse("sale not found"))
	case errors.Is(err, sales.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, errorResponse("sale is already paid"))
	case errors.Is(err, sales.ErrCannotEditPaid):
		c.JSON(http.StatusConflict, errorResponse("paid sales cannot be edited"))
	case errors.Is(err, sales.ErrConstraint):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("sale operation failed"))
	}
}

func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req sales.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	sale, err := h.service.CreateSale(c.Request.Context(), req)
	if err != nil {
		saleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("sale created", sale))
}

func (h *SalesHandler) ListSales(c *gin.Context) {
	var query ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid query parameters"))
		return
	}

	filter := sales.ListFilter{
		StartDate:     query.StartDate,
		EndDate:       query.EndDate,
		PaymentMethod: query.PaymentMethod,
		OwnerID:       query.OwnerID,
		IsPaid:        query.IsPaid,
		Limit:         query.Limit,
		Offset:        query.Offset,
	}

	list, total, err := h.service.ListSales(c.Request.Context(), filter)
	if err != nil {
		saleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("sales", list, PageMeta{
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}))
}

func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := saleParam(c)
	if !ok {
		return
	}
	sale, err := h.service.GetSale(c.Request.Context(), id)
	if err != nil {
		saleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("sale", sale))
}

func (h *SalesHandler) MarkAsPaid(c *gin.Context) {
	id, ok := saleParam(c)
	if !ok {
		return
	}
	sale, err := h.service.MarkAsPaid(c.Request.Context(), id)
	if err != nil {
		saleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("sale marked as paid", sale))
}

func (h *SalesHandler) UpdateSale(c *gin.Context) {
	id, ok := saleParam(c)
	if !ok {
		return
	}
	var req sales.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	sale, err := h.service.UpdateSale(c.Request.Context(), id, req)
	if err != nil {
		saleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("sale updated", sale))
}

func (h *SalesHandler) DeleteSale(c *gin.Context) {
	id, ok := saleParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSale(c.Request.Context(), id); err != nil {
		saleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("sale deleted", nil))
}
