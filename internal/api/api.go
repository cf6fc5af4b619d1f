package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/api/handlers"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services holds what the router exposes. Nil services leave their routes
// unregistered.
type Services struct {
	Auth      middleware.Authenticator
	Links     handlers.LinkService
	Users     handlers.UserService
	Stores    handlers.StoreService
	Dashboard handlers.DashboardService
	Financial handlers.FinancialService
}

type RouterConfig struct {
	AllowedOrigins []string
	Realm          string
	// InvalidCredentials is the Authenticator error answered with 401.
	InvalidCredentials error
}

func NewRouter(services *Services, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil || services.Auth == nil {
		return router
	}

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.BasicAuth(services.Auth, cfg.Realm, cfg.InvalidCredentials))
	apiGroup.GET("/me", handlers.Me)
	apiGroup.GET("/fields", handlers.Fields)

	admin := middleware.RequireAdmin()

	if services.Links != nil {
		h := handlers.NewLinkHandler(services.Links)
		links := apiGroup.Group("/links")
		{
			links.GET("", h.List)
			links.POST("", admin, h.Create)
			links.PUT("/:id", admin, h.Update)
			links.DELETE("/:id", admin, h.Delete)
		}
	}

	if services.Dashboard != nil {
		h := handlers.NewDashboardHandler(services.Dashboard)
		dashboard := apiGroup.Group("/dashboard")
		{
			dashboard.GET("", h.View)
			dashboard.GET("/records", h.Records)
			dashboard.GET("/kpis", h.KPIs)
			dashboard.GET("/options", h.Options)
		}
	}

	if services.Financial != nil {
		h := handlers.NewFinancialHandler(services.Financial)
		financial := apiGroup.Group("/financial")
		{
			financial.GET("/actual-budget", h.ActualBudget)
			financial.GET("/store-store", h.StoreStore)
			financial.GET("/ytd", h.YTD)
		}
	}

	if services.Users != nil {
		h := handlers.NewUserHandler(services.Users)
		users := apiGroup.Group("/users", admin)
		{
			users.GET("", h.List)
			users.POST("", h.Create)
			users.PUT("/:id", h.Update)
			users.DELETE("/:id", h.Delete)
		}
	}

	if services.Stores != nil {
		h := handlers.NewStoreHandler(services.Stores)
		stores := apiGroup.Group("/stores", admin)
		{
			stores.GET("", h.List)
			stores.POST("", h.Create)
			stores.PUT("/:id", h.Update)
			stores.DELETE("/:id", h.Delete)
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		origins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(origins) > 0 {
			cfg.AllowOrigins = origins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
