package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CommandHandler maps one command line to its reply text. Wired to the
// scheduler's command surface (/backtest, /status, /signals, /load, /findid,
// /setid, /ping).
type CommandHandler func(command string) string

// pollRetryDelay is the pause after a failed getUpdates round.
const pollRetryDelay = 5 * time.Second

// telegramUpdate is one long-poll update. Only text messages matter; the chat
// id is kept so commands from anyone but the configured chat are ignored.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling long-polls for commands and dispatches them to the handler.
// Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	// Own client: the timeout must outlast the 30s long-poll hold.
	client := &http.Client{Timeout: 35 * time.Second}
	offset := 0

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		updates, err := t.pollOnce(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] telegram poll: %v", err)
			time.Sleep(pollRetryDelay)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if !t.fromConfiguredChat(update.Message.Chat.ID) {
				log.Printf("[WARN] ignoring command from chat %d", update.Message.Chat.ID)
				continue
			}
			command := strings.TrimSpace(update.Message.Text)
			log.Printf("[INFO] received command: %s", command)
			if reply := handler(command); reply != "" {
				if err := t.Send(ctx, reply); err != nil {
					log.Printf("[ERROR] send reply: %v", err)
				}
			}
		}
	}
}

func (t *TelegramNotifier) pollOnce(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	u := fmt.Sprintf("%s?offset=%d&timeout=30", t.methodURL("getUpdates"), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read updates: %w", err)
	}
	var result struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("getUpdates returned ok=false")
	}
	return result.Result, nil
}

func (t *TelegramNotifier) fromConfiguredChat(chatID int64) bool {
	return t.ChatID == "" || strconv.FormatInt(chatID, 10) == t.ChatID
}
