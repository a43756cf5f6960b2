package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTelegramAPI is the Bot API host.
const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramSender sends messages via the Telegram Bot API.
type TelegramSender struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramSender creates a sender with optional proxy support.
func NewTelegramSender(botToken, chatID, proxyURL string, logger zerolog.Logger) *TelegramSender {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramSender{
		BaseURL:  DefaultTelegramAPI,
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		logger: logger.With().Str("component", "telegram").Logger(),
	}
}

func (t *TelegramSender) Name() string { return "telegram" }

// Send posts the title in bold followed by the escaped body.
func (t *TelegramSender) Send(ctx context.Context, title, body string) error {
	return t.SendText(ctx, fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(body)))
}

// SendText posts pre-formatted HTML to the configured chat.
func (t *TelegramSender) SendText(ctx context.Context, text string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
