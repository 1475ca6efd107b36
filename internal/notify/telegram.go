package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"rollcall.app/bot/core/config"
)

// NewTelegram returns a Notifier that posts messages through the Telegram Bot
// API. Transient failures are retried with backoff; a non-retryable API error
// is returned to the caller so the escalation engine can apply its counting
// policy.
func NewTelegram(cfg config.TelegramConfig) (Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = cfg.SendTimeout
	client.Logger = nil

	return &telegramNotifier{
		client:  client,
		baseURL: cfg.BaseURL,
		token:   cfg.BotToken,
	}, nil
}

type telegramNotifier struct {
	client  *retryablehttp.Client
	baseURL string
	token   string
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (n *telegramNotifier) Send(ctx context.Context, chatID int64, text string, opts SendOptions) error {
	payload := sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}
	if opts.Markdown {
		payload.ParseMode = "Markdown"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read send response: %w", err)
	}

	var apiResp sendMessageResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("decode send response (status %d): %w", resp.StatusCode, err)
	}

	if !apiResp.OK {
		return fmt.Errorf("telegram api error %d for chat %d: %s", apiResp.ErrorCode, chatID, apiResp.Description)
	}

	slog.DebugContext(ctx, "message delivered", "chat_id", chatID, "markdown", opts.Markdown)
	return nil
}
