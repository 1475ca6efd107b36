package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall.app/bot/core/config"
	"rollcall.app/bot/internal/clock"
	"rollcall.app/bot/internal/http/dto"
	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/queue"
	"rollcall.app/bot/internal/service"
	"rollcall.app/bot/internal/store"
)

// AdminHandler exposes the manual trigger surface and a per-chat status view.
// Triggers are enqueued, not run inline, so a manual firing takes the same
// path as a scheduled one.
type AdminHandler struct {
	producer  queue.Producer
	directory service.DirectoryService
	ledger    store.LedgerStore
	counters  store.CounterStore
	cfg       config.CheckinConfig
	clock     clock.Clock
}

func NewAdminHandler(
	producer queue.Producer,
	directory service.DirectoryService,
	ledger store.LedgerStore,
	counters store.CounterStore,
	cfg config.CheckinConfig,
	clk clock.Clock,
) *AdminHandler {
	return &AdminHandler{
		producer:  producer,
		directory: directory,
		ledger:    ledger,
		counters:  counters,
		cfg:       cfg,
		clock:     clk,
	}
}

func (h *AdminHandler) TriggerOpening(c *gin.Context) {
	h.trigger(c, model.KindOpeningTrigger)
}

func (h *AdminHandler) TriggerFollowUp(c *gin.Context) {
	h.trigger(c, model.KindFollowUpTrigger)
}

func (h *AdminHandler) trigger(c *gin.Context, kind model.EventKind) {
	ctx := c.Request.Context()

	if err := h.producer.Enqueue(ctx, queue.EventMessage{Kind: kind}); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue manual trigger", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue trigger"})
		return
	}

	slog.InfoContext(ctx, "manual trigger enqueued", "kind", kind)
	c.JSON(http.StatusAccepted, dto.TriggerResponse{Kind: string(kind), Enqueued: true})
}

func (h *AdminHandler) ChatStatus(c *gin.Context) {
	ctx := c.Request.Context()

	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = clock.DayKey(h.clock.Now(), h.cfg.Location())
	} else if _, err := time.Parse(clock.DayFormat, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	state, err := h.counters.GetOrCreate(ctx, chatID, date)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load check-in state", "error", err, "chat_id", chatID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load status"})
		return
	}

	tracked, err := h.directory.ListTracked(ctx, chatID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load roster", "error", err, "chat_id", chatID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load status"})
		return
	}

	trackedIDs := make([]int64, len(tracked))
	for i, p := range tracked {
		trackedIDs[i] = p.UserID
	}

	responded, err := h.ledger.GetResponded(ctx, chatID, date)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load responded set", "error", err, "chat_id", chatID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load status"})
		return
	}
	unresponded, err := h.ledger.GetUnresponded(ctx, chatID, date, trackedIDs)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load unresponded set", "error", err, "chat_id", chatID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load status"})
		return
	}

	resp := dto.ChatStatusResponse{
		ChatID:        chatID,
		Date:          date,
		ReminderCount: state.ReminderCount,
		Responded:     responded,
		Unresponded:   unresponded,
	}
	if state.LastReminderAt != nil {
		formatted := state.LastReminderAt.UTC().Format(time.RFC3339)
		resp.LastReminder = &formatted
	}

	c.JSON(http.StatusOK, resp)
}
