package models

import "time"

// Order feed event names.
const (
	EventConnected      = "connected"
	EventOrderCreated   = "order_created"
	EventOrderUpdated   = "order_updated"
	EventOrderCancelled = "order_cancelled"
	EventOrderStatus    = "order_status"
	EventSummarySent    = "summary_sent"
)

// OrderEvent is one message of the admin order feed.
type OrderEvent struct {
	Event        string    `json:"event"`
	Order        *Order    `json:"order,omitempty"`
	RestaurantID uint      `json:"restaurant_id,omitempty"`
	Date         string    `json:"date,omitempty"`
	At           time.Time `json:"at"`
}
