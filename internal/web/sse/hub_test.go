package sse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{"single line data", "ledger-update", "{}", "event: ledger-update\ndata: {}\n\n"},
		{"multi-line data", "note", "a\nb", "event: note\ndata: a\ndata: b\n\n"},
		{"empty data", "ping", "", "event: ping\ndata: \n\n"},
		{"crlf line endings", "test", "line1\r\nline2\r\n", "event: test\ndata: line1\ndata: line2\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func startHub(t *testing.T) *Hub {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func receive(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case msg := <-client.send:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
		return ""
	}
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub := startHub(t)

	clients := []*Client{NewClient("tablet"), NewClient("kiosk")}
	for _, c := range clients {
		require.True(t, hub.Register(c))
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.BroadcastEvent("update", "data")
	for _, c := range clients {
		assert.Equal(t, "event: update\ndata: data\n\n", receive(t, c))
	}
}

func TestHubUnregister(t *testing.T) {
	hub := startHub(t)
	client := NewClient("tablet")
	require.True(t, hub.Register(client))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open)
}

func TestHubNotifyEncodesEvent(t *testing.T) {
	hub := startHub(t)
	client := NewClient("tablet")
	require.True(t, hub.Register(client))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	ts := time.Date(2025, 9, 14, 1, 9, 30, 0, time.UTC)
	hub.Notify(model.Event{Type: model.EventLedgerUpdated, Timestamp: ts, Users: []string{"Alice"}})

	msg := receive(t, client)
	require.True(t, strings.HasPrefix(msg, "event: ledger-update\ndata: "))
	payload := strings.TrimSuffix(strings.TrimPrefix(msg, "event: ledger-update\ndata: "), "\n\n")

	var got model.Event
	require.NoError(t, json.Unmarshal([]byte(payload), &got))
	assert.Equal(t, model.EventLedgerUpdated, got.Type)
	assert.Equal(t, []string{"Alice"}, got.Users)
	assert.True(t, ts.Equal(got.Timestamp))
}

func TestHubCloseRejectsRegistration(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	hub.Close()
	hub.Close()

	assert.False(t, hub.Register(NewClient("late")))
}

func TestServeSSEStreamsEvents(t *testing.T) {
	hub := startHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ServeSSE(rec, req, hub, "tablet")
		close(done)
	}()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.Notify(model.Event{Type: model.EventCatalogUpdated})
	// give the stream a moment to write before the request ends
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: connected\n")
	assert.Contains(t, body, "event: ledger-update\n")
	assert.Contains(t, body, `"type":"catalog_updated"`)
}
