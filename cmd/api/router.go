package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"deptbook/internal/middleware"
	"deptbook/internal/modules/admin"
	"deptbook/internal/modules/booking"
	"deptbook/internal/modules/catalog"
	jwtsvc "deptbook/internal/pkg/jwt"
	"deptbook/internal/realtime"
)

type routerDeps struct {
	jwt            *jwtsvc.Service
	hub            *realtime.Hub
	booking        *booking.Service
	catalog        *catalog.Service
	admin          *admin.Service
	allowedOrigins []string
}

func newRouter(db *gorm.DB, d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(d.allowedOrigins))

	r.GET("/health", healthHandler(db))
	r.GET("/ws/resources", realtime.NewWSHandler(d.hub, d.jwt, d.allowedOrigins).HandleWebSocket)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(d.jwt))
	{
		catalog.NewHandler(d.catalog).RegisterRoutes(v1)
		booking.NewHandler(d.booking).RegisterRoutes(v1)

		adminGroup := v1.Group("/admin", middleware.AdminOnly())
		admin.NewHandler(d.admin).RegisterRoutes(adminGroup)
	}
	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
