package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/api/middleware"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusClientClosed is reported when the caller went away mid-request.
const statusClientClosed = 499

// respondError maps service and engine errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, pnl.ErrUnknownField),
		errors.Is(err, pnl.ErrInvalidPeriodRange):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound), errors.Is(err, pnl.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrStaleSelection):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosed)
		return
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// queryList accepts repeated and comma-separated values:
//
//	?stores=A&stores=B
//	?stores=A,B
func queryList(c *gin.Context, name string) []string {
	raw := c.QueryArray(name)
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, v := range raw {
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	return err == nil && v
}

func session(c *gin.Context) domain.Session {
	return middleware.SessionFrom(c)
}
