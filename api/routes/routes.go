package routes

import (
	"net/http"

	"github.com/ArowuTest/homeradio-cashout/internal/config"
	"github.com/ArowuTest/homeradio-cashout/internal/handlers"
	"github.com/ArowuTest/homeradio-cashout/internal/middleware"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/ArowuTest/homeradio-cashout/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles the HTTP handlers mounted by SetupRouter
type Handlers struct {
	USSD      *handlers.USSDHandler
	Auth      *handlers.AuthHandler
	Draw      *handlers.DrawHandler
	Config    *handlers.ConfigHandler
	Audit     *handlers.AuditHandler
	Blacklist *handlers.BlacklistHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers, tokens *jwt.TokenService) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		public.GET("/jackpot", h.Draw.GetJackpotStatus)

		public.GET("/ussd/callback", h.USSD.Callback)
		public.POST("/ussd/callback", h.USSD.Callback)

		auth := public.Group("/auth")
		{
			auth.POST("/token", h.Auth.IssueToken)
		}
	}

	// Protected routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(tokens, "admin", services.OperatorRole))
	{
		draws := admin.Group("/draws")
		{
			draws.GET("", h.Draw.ListDraws)
			draws.POST("/execute", h.Draw.ExecuteDraw)
			draws.GET("/:id", h.Draw.GetDrawByID)
			draws.GET("/:id/tickets", h.Draw.GetDrawTickets)
		}

		admin.GET("/config", h.Config.GetConfig)
		admin.PATCH("/config", h.Config.UpdateConfig)

		admin.GET("/audit-logs", h.Audit.ListAuditLogs)

		blacklist := admin.Group("/blacklist")
		{
			blacklist.GET("", h.Blacklist.ListBlacklist)
			blacklist.POST("", h.Blacklist.AddToBlacklist)
			blacklist.DELETE("/:msisdn", h.Blacklist.RemoveFromBlacklist)
		}
	}

	return router
}
