package handlers

import (
	"net/http"
	"slices"
	"time"

	"surya-backend/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with recovery, request logging, CORS and all routes.
func NewRouter(cfg *config.Config, log *zap.Logger, h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg.CORSAllowOrigins)))

	h.RegisterRoutes(router)
	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, notFoundText)
	})
	return router
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	return cc
}
