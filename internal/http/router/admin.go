package router

import (
	"github.com/gin-gonic/gin"

	"rollcall.app/bot/internal/http/handler"
)

func AdminRouter(router *gin.RouterGroup, handler *handler.AdminHandler) {
	router.POST("/trigger/opening", handler.TriggerOpening)
	router.POST("/trigger/followup", handler.TriggerFollowUp)
	router.GET("/chats/:chat_id/status", handler.ChatStatus)
}
