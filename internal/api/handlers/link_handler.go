package handlers

import (
	"context"
	"net/http"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

type LinkService interface {
	List(ctx context.Context) ([]domain.Link, error)
	Create(ctx context.Context, name, rawURL string) (*domain.Link, error)
	Update(ctx context.Context, id, name, rawURL string) (*domain.Link, error)
	Delete(ctx context.Context, id string) error
}

type LinkHandler struct {
	service LinkService
}

func NewLinkHandler(service LinkService) *LinkHandler {
	return &LinkHandler{service: service}
}

type linkRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func (h *LinkHandler) Create(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	link, err := h.service.Create(c.Request.Context(), req.Name, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *LinkHandler) Update(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	link, err := h.service.Update(c.Request.Context(), c.Param("id"), req.Name, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
