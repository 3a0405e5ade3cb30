package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// TelegramNotifier is the interactive trigger surface: batch runs are
// requested and reported over the Telegram Bot API. Progress updates edit a
// single message in place so a long batch does not flood the chat.
type TelegramNotifier struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BaseURL:  "https://api.telegram.org",
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (t *TelegramNotifier) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.BaseURL, t.BotToken, method)
}

// apiResult is the envelope every bot API call answers with. Only the
// message id is read back; it is what EditMessage needs.
type apiResult struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int `json:"message_id"`
	} `json:"result"`
}

func (t *TelegramNotifier) call(ctx context.Context, method string, payload map[string]any) (*apiResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("telegram %s: status %d, body: %s", method, resp.StatusCode, string(respBody))
	}

	var result apiResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram %s: API returned ok=false", method)
	}
	return &result, nil
}

// Send posts a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	_, err := t.SendReturningID(ctx, text)
	return err
}

// SendReturningID posts a message and returns its id so the message can be
// updated later with EditMessage.
func (t *TelegramNotifier) SendReturningID(ctx context.Context, text string) (int, error) {
	result, err := t.call(ctx, "sendMessage", map[string]any{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return 0, err
	}
	return result.Result.MessageID, nil
}

// EditMessage replaces the text of a previously sent message.
func (t *TelegramNotifier) EditMessage(ctx context.Context, messageID int, text string) error {
	_, err := t.call(ctx, "editMessageText", map[string]any{
		"chat_id":    t.ChatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	})
	return err
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(ctx, text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
