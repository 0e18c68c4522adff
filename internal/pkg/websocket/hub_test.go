package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/app/models"
)

func TestPublishReachesOnlyTheUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	alice, bob := uuid.New(), uuid.New()
	upgrader := NewUpgrader()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.URL.Query().Get("user"))
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		_ = hub.Serve(upgrader, w, r, id)
	}))
	defer srv.Close()

	dial := func(id uuid.UUID) *websocket.Conn {
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + id.String()
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	aliceConn := dial(alice)
	bobConn := dial(bob)

	require.Eventually(t, func() bool {
		return hub.ClientCount(alice) == 1 && hub.ClientCount(bob) == 1
	}, 2*time.Second, 10*time.Millisecond)

	n := &models.Notification{ID: uuid.New(), UserID: alice, Title: "Claim approved", Type: models.NotificationClaimApproved}
	hub.Publish(alice, n)

	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := aliceConn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, n.ID, event.Notification.ID)

	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err, "bob receives nothing")

	aliceConn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(alice) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestUpgraderChecksOrigin(t *testing.T) {
	up := NewUpgrader("https://app.campus.edu")

	req := httptest.NewRequest(http.MethodGet, "http://api.campus.edu/ws", nil)
	assert.True(t, up.CheckOrigin(req), "no origin header")

	req.Header.Set("Origin", "http://api.campus.edu")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://app.campus.edu")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, up.CheckOrigin(req))
}
