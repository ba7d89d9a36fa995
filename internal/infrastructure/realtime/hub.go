// Package realtime pushes committed stock changes to WebSocket subscribers,
// one subscription per branch.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"laluna/internal/domain/inventory"
	"laluna/pkg/logger"
)

// EventStockUpdated is the event name of a stock change frame.
const EventStockUpdated = "stock.updated"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var _ inventory.StockNotifier = (*Hub)(nil)

// Message is the frame written to subscribers.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks subscribers per branch.
type Hub struct {
	mu       sync.RWMutex
	branches map[int]map[*client]struct{}
	log      *logger.Logger
}

// client owns one connection. Writes happen only in writePump.
type client struct {
	hub      *Hub
	conn     *websocket.Conn
	branchID int
	send     chan []byte
	once     sync.Once
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		branches: make(map[int]map[*client]struct{}),
		log:      log.WithComponent("realtime"),
	}
}

// Serve registers conn for branchID and blocks until the peer disconnects.
// Inbound frames are ignored apart from keeping the read deadline alive.
func (h *Hub) Serve(branchID int, conn *websocket.Conn) {
	c := h.register(branchID, conn)
	defer h.unregister(c)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(branchID int, conn *websocket.Conn) *client {
	c := &client{hub: h, conn: conn, branchID: branchID, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	subs, ok := h.branches[branchID]
	if !ok {
		subs = make(map[*client]struct{})
		h.branches[branchID] = subs
	}
	subs[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	h.log.Debugw("subscriber connected", "branch_id", branchID)
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if subs, ok := h.branches[c.branchID]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.branches, c.branchID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// NotifyStock broadcasts a change to the branch subscribers. It never
// blocks: a subscriber whose buffer is full is disconnected.
func (h *Hub) NotifyStock(branchID int, change inventory.StockChange) {
	frame, err := json.Marshal(Message{Event: EventStockUpdated, Data: change})
	if err != nil {
		h.log.Errorw("marshal stock change", "error", err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.branches[branchID] {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warnw("dropping slow subscriber", "branch_id", branchID)
		h.unregister(c)
	}
}

// Subscribers returns the number of live connections for a branch.
func (h *Hub) Subscribers(branchID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.branches[branchID])
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*client
	for branchID, subs := range h.branches {
		for c := range subs {
			all = append(all, c)
		}
		delete(h.branches, branchID)
	}
	h.mu.Unlock()

	for _, c := range all {
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
