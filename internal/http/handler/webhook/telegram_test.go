package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rollcall.app/bot/internal/http/handler/webhook"
	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/queue"
)

type mockProducer struct {
	enqueueFn func(ctx context.Context, msg queue.EventMessage) error
	enqueued  []queue.EventMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.EventMessage) error {
	m.enqueued = append(m.enqueued, msg)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }

var _ = Describe("TelegramWebhookHandler", func() {
	var (
		router   *gin.Engine
		producer *mockProducer
	)

	const secret = "hook-secret"

	groupUpdate := func() map[string]any {
		return map[string]any{
			"update_id": 1001,
			"message": map[string]any{
				"message_id": 777,
				"date":       1787040000,
				"text":       "working on the release",
				"chat":       map[string]any{"id": -100, "type": "group"},
				"from":       map[string]any{"id": 5, "is_bot": false, "username": "alice"},
			},
		}
	}

	post := func(update map[string]any, withSecret bool) *httptest.ResponseRecorder {
		body, err := json.Marshal(update)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		if withSecret {
			req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		producer = &mockProducer{}
		h := webhook.NewTelegramWebhookHandler(producer, secret)
		router.POST("/webhook/telegram", h.HandleUpdate)
	})

	It("enqueues a qualifying group message", func() {
		w := post(groupUpdate(), true)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(producer.enqueued).To(HaveLen(1))

		event := producer.enqueued[0]
		Expect(event.Kind).To(Equal(model.KindQualifyingMessage))
		Expect(event.ChatID).To(Equal(int64(-100)))
		Expect(event.UserID).To(Equal(int64(5)))
		Expect(event.Handle).To(Equal("alice"))
		Expect(event.MessageID).To(Equal(int64(777)))
		Expect(event.ObservedAt).To(Equal(int64(1787040000)))
	})

	It("rejects a missing secret token", func() {
		w := post(groupUpdate(), false)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("ignores bot messages", func() {
		update := groupUpdate()
		update["message"].(map[string]any)["from"].(map[string]any)["is_bot"] = true

		w := post(update, true)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("ignores private chats", func() {
		update := groupUpdate()
		update["message"].(map[string]any)["chat"].(map[string]any)["type"] = "private"

		w := post(update, true)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("ignores empty text", func() {
		update := groupUpdate()
		update["message"].(map[string]any)["text"] = "   "

		w := post(update, true)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("ignores updates without a message", func() {
		w := post(map[string]any{"update_id": 1002}, true)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("returns 500 when the queue is down so telegram retries", func() {
		producer.enqueueFn = func(ctx context.Context, msg queue.EventMessage) error {
			return fmt.Errorf("redis down")
		}
		w := post(groupUpdate(), true)
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
