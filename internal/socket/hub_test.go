// server/internal/socket/hub_test.go
package socket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meat-export-api-server/internal/events"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// dialTestClient mở một cặp kết nối WebSocket thật qua httptest: phía
// server được đăng ký vào hub, phía client dùng để đọc sự kiện broadcast.
func dialTestClient(t *testing.T, hub *Hub, userID string) (client, server *websocket.Conn) {
	t.Helper()

	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server = <-serverConns
	hub.Register(userID, server)
	t.Cleanup(func() {
		hub.Unregister(userID)
		server.Close()
	})

	return client, server
}

func TestBroadcastDeliversToAllClients(t *testing.T) {
	hub := NewHub()
	first, _ := dialTestClient(t, hub, "user-1")
	second, _ := dialTestClient(t, hub, "user-2")

	hub.Broadcast(events.Event{Topic: "order:save", Entity: "order", Op: events.OpSave})

	for _, client := range []*websocket.Conn{first, second} {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := client.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(msg), `"topic":"order:save"`)
	}
}

func TestBroadcastSurvivesDeadClient(t *testing.T) {
	hub := NewHub()
	_, deadServer := dialTestClient(t, hub, "dead")
	live, _ := dialTestClient(t, hub, "live")

	deadServer.Close()

	// Một kết nối hỏng không được giữ lock và chặn các client còn lại
	start := time.Now()
	hub.Broadcast(events.Event{Topic: "stock:remove", Entity: "stock", Op: events.OpRemove})
	assert.Less(t, time.Since(start), writeWait)

	live.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := live.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "stock:remove")
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub := NewHub()
	client, _ := dialTestClient(t, hub, "user-1")

	hub.Unregister("user-1")
	hub.Broadcast(events.Event{Topic: "order:save", Entity: "order", Op: events.OpSave})

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}
