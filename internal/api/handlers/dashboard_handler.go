package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardService interface {
	View(ctx context.Context, q service.DashboardQuery) (*service.DashboardView, error)
	Options(ctx context.Context, session domain.Session, linkID string) (domain.Options, string, error)
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) parseQuery(c *gin.Context) (service.DashboardQuery, bool) {
	q := service.DashboardQuery{
		LinkID: strings.TrimSpace(c.Query("link")),
		Criteria: domain.FilterCriteria{
			Session:     session(c),
			Months:      queryList(c, "months"),
			Stores:      queryList(c, "stores"),
			PeriodStart: strings.TrimSpace(c.Query("period_start")),
			PeriodEnd:   strings.TrimSpace(c.Query("period_end")),
		},
		ExcludeSeverance: queryBool(c, "exclude_severance"),
	}
	if q.LinkID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link parameter is required"})
		return q, false
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" && raw != "all" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return q, false
		}
		q.Criteria.Year = year
	}
	return q, true
}

// View answers records, KPIs and selector options in one response.
func (h *DashboardHandler) View(c *gin.Context) {
	q, ok := h.parseQuery(c)
	if !ok {
		return
	}
	view, err := h.service.View(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) Records(c *gin.Context) {
	q, ok := h.parseQuery(c)
	if !ok {
		return
	}
	view, err := h.service.View(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": view.Records, "fetchError": view.FetchError})
}

func (h *DashboardHandler) KPIs(c *gin.Context) {
	q, ok := h.parseQuery(c)
	if !ok {
		return
	}
	view, err := h.service.View(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kpis": view.KPIs, "count": len(view.Records), "fetchError": view.FetchError})
}

func (h *DashboardHandler) Options(c *gin.Context) {
	linkID := strings.TrimSpace(c.Query("link"))
	if linkID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link parameter is required"})
		return
	}
	opts, fetchErr, err := h.service.Options(c.Request.Context(), session(c), linkID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": opts, "fetchError": fetchErr})
}

// Fields lists the canonical field names accepted by the comparison views.
func Fields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": domain.AllFields()})
}
