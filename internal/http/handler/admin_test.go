package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rollcall.app/bot/core/config"
	"rollcall.app/bot/internal/clock"
	"rollcall.app/bot/internal/http/handler"
	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/queue"
)

var _ = Describe("AdminHandler", func() {
	var (
		router   *gin.Engine
		producer *mockProducer
		dir      *mockDirectory
		ledger   *mockLedgerStore
		counters *mockCounterStore
	)

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()

		producer = &mockProducer{}
		dir = &mockDirectory{}
		ledger = &mockLedgerStore{}
		counters = &mockCounterStore{}

		cfg := config.CheckinConfig{Timezone: "UTC", ReminderCap: 4}
		h := handler.NewAdminHandler(producer, dir, ledger, counters, cfg, clock.Fixed(now))
		router.POST("/admin/trigger/opening", h.TriggerOpening)
		router.POST("/admin/trigger/followup", h.TriggerFollowUp)
		router.GET("/admin/chats/:chat_id/status", h.ChatStatus)
	})

	Describe("manual triggers", func() {
		It("enqueues an opening trigger", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/trigger/opening", nil))

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(producer.enqueued).To(HaveLen(1))
			Expect(producer.enqueued[0].Kind).To(Equal(model.KindOpeningTrigger))
		})

		It("enqueues a follow-up trigger", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/trigger/followup", nil))

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(producer.enqueued[0].Kind).To(Equal(model.KindFollowUpTrigger))
		})

		It("returns 500 when the queue is unavailable", func() {
			producer.enqueueFn = func(ctx context.Context, msg queue.EventMessage) error {
				return fmt.Errorf("redis down")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/trigger/opening", nil))
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("chat status", func() {
		BeforeEach(func() {
			last := now.Add(-time.Hour)
			counters.getOrCreateFn = func(ctx context.Context, chatID int64, date string) (*model.CheckinState, error) {
				return &model.CheckinState{ChatID: chatID, Date: date, ReminderCount: 2, LastReminderAt: &last}, nil
			}
			dir.listTrackedFn = func(ctx context.Context, chatID int64) ([]model.Participant, error) {
				return []model.Participant{
					{UserID: 5, Handle: "alice", Active: true},
					{UserID: 2, Handle: "bob", Active: true},
				}, nil
			}
			ledger.getRespondedFn = func(ctx context.Context, chatID int64, date string) ([]int64, error) {
				return []int64{2}, nil
			}
			ledger.getUnrespondedFn = func(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
				return []int64{5}, nil
			}
		})

		It("reports the current day by default", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/chats/-100/status", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["date"]).To(Equal("2026-08-28"))
			Expect(resp["reminder_count"]).To(BeEquivalentTo(2))
		})

		It("accepts an explicit date", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/chats/-100/status?date=2026-08-27", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["date"]).To(Equal("2026-08-27"))
		})

		It("rejects a malformed date", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/chats/-100/status?date=yesterday", nil))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a malformed chat id", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/chats/banana/status", nil))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when the roster cannot be loaded", func() {
			dir.listTrackedFn = func(ctx context.Context, chatID int64) ([]model.Participant, error) {
				return nil, fmt.Errorf("store down")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/chats/-100/status", nil))
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
