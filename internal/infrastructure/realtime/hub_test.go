package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/domain/inventory"
)

func newTestServer(t *testing.T, hub *Hub, branchID int) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(branchID, conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_BroadcastsToBranchOnly(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	branch1 := dial(t, newTestServer(t, hub, 1))
	branch2 := dial(t, newTestServer(t, hub, 2))

	require.Eventually(t, func() bool {
		return hub.Subscribers(1) == 1 && hub.Subscribers(2) == 1
	}, time.Second, 10*time.Millisecond)

	hub.NotifyStock(1, inventory.StockChange{BranchID: 1, ProductName: "Tomate", Quantity: "12.500"})

	_ = branch1.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := branch1.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string                `json:"event"`
		Data  inventory.StockChange `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, EventStockUpdated, msg.Event)
	assert.Equal(t, "Tomate", msg.Data.ProductName)
	assert.Equal(t, "12.500", msg.Data.Quantity)

	_ = branch2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = branch2.ReadMessage()
	assert.Error(t, err, "branch 2 must not receive branch 1 changes")
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn := dial(t, newTestServer(t, hub, 3))
	require.Eventually(t, func() bool { return hub.Subscribers(3) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers(3) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_NotifyWithoutSubscribers(t *testing.T) {
	hub := NewHub(nil)
	assert.NotPanics(t, func() {
		hub.NotifyStock(9, inventory.StockChange{BranchID: 9})
	})
	assert.Zero(t, hub.Subscribers(9))
}
