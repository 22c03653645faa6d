package feed

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, 7)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(conn)
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) models.OrderEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev models.OrderEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHubGreetsThenBroadcasts(t *testing.T) {
	utils.SilenceLoggers(io.Discard)
	hub := NewHub()
	conn := dialHub(t, hub)

	assert.Equal(t, models.EventConnected, readEvent(t, conn).Event)
	assert.Equal(t, 1, hub.Clients())

	hub.PublishOrder(models.EventOrderCreated, models.Order{ID: 3, OrderDate: "2025-06-10", Status: models.OrderPending})
	ev := readEvent(t, conn)
	assert.Equal(t, models.EventOrderCreated, ev.Event)
	require.NotNil(t, ev.Order)
	assert.Equal(t, uint(3), ev.Order.ID)

	hub.PublishSummary(2, "2025-06-10")
	ev = readEvent(t, conn)
	assert.Equal(t, models.EventSummarySent, ev.Event)
	assert.Equal(t, uint(2), ev.RestaurantID)
	assert.Nil(t, ev.Order)
}

func TestNilHubIgnoresPublish(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() {
		hub.PublishOrder(models.EventOrderCancelled, models.Order{ID: 1})
		hub.PublishSummary(1, "2025-06-10")
	})
}
