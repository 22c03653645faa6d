package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

const feedPath = "/admin/orders/feed"

func (c *Client) feedURL() string {
	u := c.endpoint(feedPath, nil)
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// WatchOrders subscribes to the admin order feed and calls fn for every event,
// the initial "connected" greeting included. It blocks until ctx is done
// (returning nil) or the connection fails.
func (s *AdminService) WatchOrders(ctx context.Context, fn func(models.OrderEvent)) error {
	header := http.Header{}
	if token := s.c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.c.httpClient.Timeout}
	conn, resp, err := dialer.DialContext(ctx, s.c.feedURL(), header)
	if err != nil {
		if resp != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &TransportError{Op: "GET " + feedPath, Err: err}
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &TransportError{Op: "read order feed", Err: err}
		}
		var ev models.OrderEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			utils.ErrorLogger.Warnf("skipping malformed feed message: %v", err)
			continue
		}
		fn(ev)
	}
}

// EventLine renders an event as one line for terminal output.
func EventLine(ev models.OrderEvent) string {
	at := ev.At.Local().Format("15:04:05")
	if ev.Order != nil {
		o := ev.Order
		return fmt.Sprintf("%s %-16s #%d %s %s %s: %s", at, ev.Event, o.ID, o.OrderDate, o.UserName, o.RestaurantName, o.Status.Label())
	}
	if ev.RestaurantID != 0 {
		return fmt.Sprintf("%s %-16s restaurant %d for %s", at, ev.Event, ev.RestaurantID, ev.Date)
	}
	return fmt.Sprintf("%s %s", at, ev.Event)
}
