package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// botServer fakes the bot API: it records every call and answers sendMessage
// with incrementing message ids.
type botServer struct {
	mu      sync.Mutex
	calls   []string         // method names in order
	bodies  []map[string]any // decoded payloads
	nextID  int
	updates []string // JSON bodies served to getUpdates, one per poll
}

func (b *botServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch {
		case r.URL.Path == "/bottok/sendMessage":
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			b.calls = append(b.calls, "sendMessage")
			b.bodies = append(b.bodies, payload)
			b.nextID++
			fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d}}`, b.nextID)
		case r.URL.Path == "/bottok/editMessageText":
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			b.calls = append(b.calls, "editMessageText")
			b.bodies = append(b.bodies, payload)
			fmt.Fprint(w, `{"ok":true,"result":{}}`)
		case r.URL.Path == "/bottok/getUpdates":
			b.calls = append(b.calls, "getUpdates")
			if len(b.updates) > 0 {
				body := b.updates[0]
				b.updates = b.updates[1:]
				fmt.Fprint(w, body)
				return
			}
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}
}

func newTestNotifier(t *testing.T, b *botServer) (*TelegramNotifier, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("tok", "42", "")
	n.BaseURL = srv.URL
	return n, srv
}

func TestSendReturningID(t *testing.T) {
	b := &botServer{}
	n, _ := newTestNotifier(t, b)

	id, err := n.SendReturningID(context.Background(), "<b>hello</b>")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	require.Len(t, b.bodies, 1)
	assert.Equal(t, "42", b.bodies[0]["chat_id"])
	assert.Equal(t, "<b>hello</b>", b.bodies[0]["text"])
	assert.Equal(t, "HTML", b.bodies[0]["parse_mode"])
}

func TestEditMessage(t *testing.T) {
	b := &botServer{}
	n, _ := newTestNotifier(t, b)

	id, err := n.SendReturningID(context.Background(), "3/12 done")
	require.NoError(t, err)
	require.NoError(t, n.EditMessage(context.Background(), id, "6/12 done"))

	require.Equal(t, []string{"sendMessage", "editMessageText"}, b.calls)
	edit := b.bodies[1]
	assert.Equal(t, float64(id), edit["message_id"])
	assert.Equal(t, "6/12 done", edit["text"])
}

func TestSend_CancelledContext(t *testing.T) {
	b := &botServer{}
	n, _ := newTestNotifier(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, n.Send(ctx, "never"))
}

func TestSend_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", "42", "")
	n.BaseURL = srv.URL
	err := n.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestStartPolling_DispatchesAndReplies(t *testing.T) {
	b := &botServer{updates: []string{
		`{"ok":true,"result":[
			{"update_id":7,"message":{"text":"/status","chat":{"id":42}}},
			{"update_id":8,"message":{"text":"/status","chat":{"id":999}}}
		]}`,
	}}
	n, _ := newTestNotifier(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan string, 2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.StartPolling(ctx, func(command string) string {
			handled <- command
			return "last run: none"
		})
	}()

	select {
	case cmd := <-handled:
		assert.Equal(t, "/status", cmd)
	case <-time.After(5 * time.Second):
		t.Fatal("command was never dispatched")
	}

	replied := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, c := range b.calls {
			if c == "sendMessage" {
				return true
			}
		}
		return false
	}
	deadline := time.Now().Add(5 * time.Second)
	for !replied() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.True(t, replied(), "the handler reply must be sent back")

	cancel()
	<-done

	// The foreign-chat update must be dropped without reaching the handler.
	select {
	case cmd := <-handled:
		t.Fatalf("command %q from unconfigured chat was handled", cmd)
	default:
	}
}
