package discord

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/caasmo/daybook/notify"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewValidation(t *testing.T) {
	_, err := New(Options{}, discardLogger())
	assert.Error(t, err, "missing webhook url")

	_, err = New(Options{WebhookURL: "https://discord.example/hook"}, nil)
	assert.Error(t, err, "missing logger")

	n, err := New(Options{WebhookURL: "https://discord.example/hook"}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, n.opts.SendTimeout)
	assert.Equal(t, 5, n.opts.APIBurst)
}

func TestSendPostsFormattedPayload(t *testing.T) {
	received := make(chan payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
	}))
	defer srv.Close()

	n, err := New(Options{WebhookURL: srv.URL}, discardLogger())
	require.NoError(t, err)

	err = n.Send(context.Background(), notify.Notification{
		Timestamp: time.Now(),
		Type:      notify.AuditNotification,
		Level:     slog.LevelInfo,
		Source:    "session",
		Message:   "user signed in",
		Fields:    map[string]any{"user_id": "user42"},
	})
	require.NoError(t, err)

	select {
	case p := <-received:
		assert.Contains(t, p.Content, "user signed in")
		assert.Contains(t, p.Content, "*session*")
		assert.Contains(t, p.Content, "user_id: `user42`")
	case <-time.After(5 * time.Second):
		t.Fatal("webhook never called")
	}
}

func TestSendDropsWhenRateLimited(t *testing.T) {
	calls := make(chan struct{}, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls <- struct{}{}
	}))
	defer srv.Close()

	n, err := New(Options{
		WebhookURL:   srv.URL,
		APIRateLimit: rate.Every(time.Hour),
		APIBurst:     1,
	}, discardLogger())
	require.NoError(t, err)

	// Both calls return nil, only the first reaches the webhook.
	require.NoError(t, n.Send(context.Background(), notify.Notification{Source: "s", Message: "first"}))
	require.NoError(t, n.Send(context.Background(), notify.Notification{Source: "s", Message: "second"}))

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("first notification never delivered")
	}
	select {
	case <-calls:
		t.Fatal("rate limited notification was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFormatMessageTruncates(t *testing.T) {
	n, err := New(Options{WebhookURL: "https://discord.example/hook"}, discardLogger())
	require.NoError(t, err)

	msg := n.formatMessage(notify.Notification{
		Type:    notify.AlarmNotification,
		Source:  "blocker",
		Message: strings.Repeat("x", 3000),
	})
	assert.Len(t, msg, discordMaxMessageLength)
	assert.True(t, strings.HasSuffix(msg, "..."))
}
