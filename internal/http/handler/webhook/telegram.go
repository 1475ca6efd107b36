package webhook

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"rollcall.app/bot/internal/http/dto"
	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/queue"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// TelegramWebhookHandler turns incoming Telegram updates into qualifying
// message events. It filters aggressively and always answers 200 for updates
// it drops, because Telegram retries anything else.
type TelegramWebhookHandler struct {
	producer      queue.Producer
	webhookSecret string
}

func NewTelegramWebhookHandler(producer queue.Producer, webhookSecret string) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		producer:      producer,
		webhookSecret: webhookSecret,
	}
}

func (h *TelegramWebhookHandler) HandleUpdate(c *gin.Context) {
	ctx := c.Request.Context()

	if h.webhookSecret != "" {
		token := c.GetHeader(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
	}

	var update dto.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		slog.WarnContext(ctx, "invalid telegram update", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	msg := update.Message
	if !qualifies(msg) {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	event := queue.EventMessage{
		Kind:       model.KindQualifyingMessage,
		ChatID:     msg.Chat.ID,
		UserID:     msg.From.ID,
		Handle:     msg.From.Username,
		MessageID:  msg.MessageID,
		Text:       msg.Text,
		ObservedAt: msg.Date,
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID := spanCtx.TraceID().String()
		event.TraceID = &traceID
	}

	if err := h.producer.Enqueue(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue qualifying message",
			"error", err,
			"chat_id", msg.Chat.ID,
			"update_id", update.UpdateID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// qualifies keeps text messages from humans in group chats. Everything else,
// service messages, bot chatter, channel posts, is dropped at the edge.
func qualifies(msg *dto.IncomingMessage) bool {
	if msg == nil || msg.From == nil {
		return false
	}
	if msg.From.IsBot {
		return false
	}
	if strings.TrimSpace(msg.Text) == "" {
		return false
	}
	return msg.Chat.Type == "group" || msg.Chat.Type == "supergroup"
}
