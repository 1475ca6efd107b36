package router

import (
	"github.com/gin-gonic/gin"

	"rollcall.app/bot/internal/http/handler/webhook"
)

func WebhookRouter(router *gin.RouterGroup, handler *webhook.TelegramWebhookHandler) {
	router.POST("/telegram", handler.HandleUpdate)
}
