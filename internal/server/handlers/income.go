package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shwepos/internal/income"
	"shwepos/internal/server/middleware"
)

type IncomeHandler struct {
	reports *income.Reports
}

func NewIncomeHandler(reports *income.Reports) *IncomeHandler {
	return &IncomeHandler{reports: reports}
}

func validDate(value string) bool {
	_, err := time.Parse(income.DayFormat, value)
	return err == nil
}

// GetDaily serves /income/daily?date=YYYY-MM-DD, defaulting to today.
func (h *IncomeHandler) GetDaily(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = income.Day(time.Now())
	}
	if !validDate(date) {
		c.JSON(http.StatusBadRequest, errorResponse("date must be YYYY-MM-DD"))
		return
	}

	report, err := h.reports.GetDaily(c.Request.Context(), middleware.OwnerID(c), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load daily income"))
		return
	}
	c.JSON(http.StatusOK, successResponse("daily income", report))
}

func rangeParams(c *gin.Context) (string, string, bool) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if !validDate(startDate) || !validDate(endDate) {
		c.JSON(http.StatusBadRequest, errorResponse("start_date and end_date must be YYYY-MM-DD"))
		return "", "", false
	}
	if endDate < startDate {
		c.JSON(http.StatusBadRequest, errorResponse("end_date must not precede start_date"))
		return "", "", false
	}
	return startDate, endDate, true
}

// GetRange serves /income/range?start_date=...&end_date=....
func (h *IncomeHandler) GetRange(c *gin.Context) {
	startDate, endDate, ok := rangeParams(c)
	if !ok {
		return
	}

	report, err := h.reports.GetRange(c.Request.Context(), middleware.OwnerID(c), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load income report"))
		return
	}
	c.JSON(http.StatusOK, successResponse("income report", report))
}

// GetMonthly serves /income/monthly?month=YYYY-MM, defaulting to the current
// month.
func (h *IncomeHandler) GetMonthly(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("month must be YYYY-MM"))
		return
	}

	report, err := h.reports.GetMonthly(c.Request.Context(), middleware.OwnerID(c), month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load monthly income"))
		return
	}
	c.JSON(http.StatusOK, successResponse("monthly income", report))
}

// GetTopItems serves /income/top-items?start_date=...&end_date=...&limit=N.
func (h *IncomeHandler) GetTopItems(c *gin.Context) {
	startDate, endDate, ok := rangeParams(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, err := h.reports.TopItems(c.Request.Context(), middleware.OwnerID(c), startDate, endDate, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load top items"))
		return
	}
	c.JSON(http.StatusOK, successResponse("top selling items", items))
}

// GetCategories serves /income/categories?start_date=...&end_date=....
func (h *IncomeHandler) GetCategories(c *gin.Context) {
	startDate, endDate, ok := rangeParams(c)
	if !ok {
		return
	}

	breakdown, err := h.reports.CategoryBreakdown(c.Request.Context(), middleware.OwnerID(c), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load category breakdown"))
		return
	}
	c.JSON(http.StatusOK, successResponse("category breakdown", breakdown))
}

func (h *IncomeHandler) GetStats(c *gin.Context) {
	stats, err := h.reports.GetOverallStats(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load income stats"))
		return
	}
	c.JSON(http.StatusOK, successResponse("income stats", stats))
}
