// Package router wires middleware, health, and module routes into the Gin engine.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apphttp "receptionist_backend/internal/http"
	"receptionist_backend/platform/httpkit"
)

// New builds the HTTP engine from the assembled application.
func New(app *apphttp.App) *gin.Engine {
	cfg := app.Config
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: cfg.CORSAllowCreds,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowAll {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	engine.Use(cors.New(corsConfig))

	limiter := httpkit.NewIPRateLimiter(rate.Limit(5), 20, app.Logger)
	engine.Use(limiter.RateLimit())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "AI receptionist API is running.")
	})
	engine.HEAD("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	api := engine.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api.POST("/admin/login", adminLogin(app))
	admin := api.Group("/admin")
	admin.Use(httpkit.AdminAuth(cfg.AdminJWTSecret))

	ctx := &apphttp.RouterContext{
		Engine: engine,
		API:    api,
		Admin:  admin,
	}
	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Info("registered module routes", "module", module.Name())
	}

	return engine
}

func adminLogin(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
			return
		}
		if app.Config.AdminPassword == "" || req.Password != app.Config.AdminPassword {
			httpkit.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		token, err := httpkit.IssueAdminToken(app.Config.AdminJWTSecret, app.Config.AdminTokenTTL)
		if err != nil {
			httpkit.Error(c, http.StatusInternalServerError, "could not issue token", nil)
			return
		}
		httpkit.OK(c, gin.H{"token": token})
	}
}
