package router

import (
	"github.com/gin-gonic/gin"

	"rollcall.app/bot/internal/http/handler"
	"rollcall.app/bot/internal/http/handler/webhook"
	"rollcall.app/bot/internal/http/middleware"
)

type RouterConfig struct {
	AdminAPIKey   string
	WebhookSecret string
}

func SetupRoutes(router *gin.Engine, adminHandler *handler.AdminHandler, webhookHandler *webhook.TelegramWebhookHandler, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	WebhookRouter(router.Group("/webhook"), webhookHandler)

	admin := router.Group("/admin")
	admin.Use(middleware.RequireAdminKey(cfg.AdminAPIKey))
	AdminRouter(admin, adminHandler)
}
