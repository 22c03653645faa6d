// Package feed pushes order events to connected admin dashboards over
// WebSocket.
package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

const writeWait = 5 * time.Second

// Hub holds every subscribed connection keyed to the subscriber's user id.
type Hub struct {
	clients map[*websocket.Conn]uint
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]uint)}
}

// Register adds conn and greets it, so the subscriber knows events from now
// on will reach it.
func (h *Hub) Register(conn *websocket.Conn, userID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = userID
	h.sendLocked(conn, models.OrderEvent{Event: models.EventConnected, At: time.Now()})
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// PublishOrder broadcasts an order change. A nil hub is a no-op.
func (h *Hub) PublishOrder(event string, order models.Order) {
	if h == nil {
		return
	}
	o := order
	h.broadcast(models.OrderEvent{Event: event, Order: &o, At: time.Now()})
}

// PublishSummary broadcasts that a restaurant's summary went out.
func (h *Hub) PublishSummary(restaurantID uint, date string) {
	if h == nil {
		return
	}
	h.broadcast(models.OrderEvent{Event: models.EventSummarySent, RestaurantID: restaurantID, Date: date, At: time.Now()})
}

func (h *Hub) broadcast(ev models.OrderEvent) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", ev.Event, len(h.clients))
	for conn := range h.clients {
		h.sendLocked(conn, ev)
	}
}

// sendLocked drops the connection when the write fails.
func (h *Hub) sendLocked(conn *websocket.Conn, ev models.OrderEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s event: %v", ev.Event, err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		utils.ErrorLogger.Warnf("Dropping feed client of user %d: %v", h.clients[conn], err)
		delete(h.clients, conn)
		conn.Close()
	}
}
