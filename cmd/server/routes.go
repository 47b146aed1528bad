package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shareshine/backend/internal/auth"
	"github.com/shareshine/backend/internal/middleware"
	"github.com/shareshine/backend/internal/registrations"
	"github.com/shareshine/backend/internal/resources"
	"github.com/shareshine/backend/internal/store"
	"github.com/shareshine/backend/internal/uploads"
	"github.com/shareshine/backend/pkg/response"
)

const healthMessage = "ShareShine Backend API is running"

// routerDeps is everything the HTTP surface needs.
type routerDeps struct {
	logger        *zap.Logger
	production    bool
	corsOrigins   []string
	maxBodyBytes  int64
	requireAdmin  bool
	store         store.Store
	registrations *registrations.Store
	authenticator auth.Authenticator
	tokens        middleware.TokenValidator
	uploader      uploads.Uploader
}

func newRouter(d routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(d.logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(d.corsOrigins))
	router.Use(middleware.Errors(d.production, d.logger))
	router.Use(middleware.BodyLimit(d.maxBodyBytes))

	health := healthHandler(d.store)
	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/health", health)

	authHandler := auth.NewHandler(d.authenticator, d.logger)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/session", middleware.JWT(d.tokens), authHandler.Session)

	var admin []gin.HandlerFunc
	if d.requireAdmin {
		admin = append(admin, middleware.JWT(d.tokens))
	}

	for _, desc := range resources.All {
		resources.NewHandler(desc, d.store, d.logger).Register(api, admin...)
	}
	registrations.NewHandler(d.registrations, d.logger).Register(api, admin...)
	uploads.NewHandler(d.uploader, d.logger).Register(api, admin...)

	router.NoRoute(middleware.NotFound())
	return router
}

// healthHandler always answers 200; the store field reports reachability.
func healthHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		storeStatus := "ok"
		if err := st.Ping(ctx); err != nil {
			storeStatus = "unavailable"
		}
		response.OK(c, gin.H{
			"status":  "ok",
			"message": healthMessage,
			"store":   storeStatus,
		})
	}
}

