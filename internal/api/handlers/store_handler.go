package handlers

import (
	"context"
	"net/http"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

type StoreService interface {
	List(ctx context.Context, search string) ([]domain.Store, error)
	Create(ctx context.Context, name, storeID string) (*domain.Store, error)
	Update(ctx context.Context, id, name, storeID string) (*domain.Store, error)
	Delete(ctx context.Context, id string) error
}

type StoreHandler struct {
	service StoreService
}

func NewStoreHandler(service StoreService) *StoreHandler {
	return &StoreHandler{service: service}
}

type storeRequest struct {
	Name    string `json:"name"`
	StoreID string `json:"storeId"`
}

func (h *StoreHandler) List(c *gin.Context) {
	stores, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (h *StoreHandler) Create(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	store, err := h.service.Create(c.Request.Context(), req.Name, req.StoreID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}

func (h *StoreHandler) Update(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	store, err := h.service.Update(c.Request.Context(), c.Param("id"), req.Name, req.StoreID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
