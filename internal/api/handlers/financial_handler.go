package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type FinancialService interface {
	ActualBudget(ctx context.Context, q service.ComparisonQuery) (domain.Comparison, error)
	StoreStore(ctx context.Context, q service.ComparisonQuery) (domain.Comparison, error)
	YTD(ctx context.Context, q service.ComparisonQuery) (domain.YTDResult, error)
}

type FinancialHandler struct {
	service FinancialService
}

func NewFinancialHandler(service FinancialService) *FinancialHandler {
	return &FinancialHandler{service: service}
}

func (h *FinancialHandler) parseQuery(c *gin.Context) service.ComparisonQuery {
	actual := strings.TrimSpace(c.Query("actual"))
	if actual == "" {
		actual = strings.TrimSpace(c.Query("link"))
	}
	return service.ComparisonQuery{
		Session:      session(c),
		ActualLinkID: actual,
		BudgetLinkID: strings.TrimSpace(c.Query("budget")),
		Store:        strings.TrimSpace(c.DefaultQuery("store", c.Query("store_a"))),
		StoreB:       strings.TrimSpace(c.Query("store_b")),
		Month:        strings.TrimSpace(c.Query("month")),
		Fields:       queryList(c, "fields"),
		Adjustment: domain.Adjustment{
			ExcludeSalesOfServices: queryBool(c, "exclude_services"),
			ExcludeBlueExpenses:    queryBool(c, "exclude_blue"),
			ExcludePepeExpenses:    queryBool(c, "exclude_pepe"),
		},
	}
}

func (h *FinancialHandler) ActualBudget(c *gin.Context) {
	cmp, err := h.service.ActualBudget(c.Request.Context(), h.parseQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (h *FinancialHandler) StoreStore(c *gin.Context) {
	cmp, err := h.service.StoreStore(c.Request.Context(), h.parseQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (h *FinancialHandler) YTD(c *gin.Context) {
	res, err := h.service.YTD(c.Request.Context(), h.parseQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
