package models

import "time"

type OrderStatus string

const (
	OrderPending          OrderStatus = "pending"
	OrderOrdered          OrderStatus = "ordered"
	OrderConfirmed        OrderStatus = "confirmed"
	OrderSentToRestaurant OrderStatus = "sent_to_restaurant"
	OrderCompleted        OrderStatus = "completed"
	OrderCancelled        OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderPending, OrderOrdered, OrderConfirmed, OrderSentToRestaurant, OrderCompleted, OrderCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable is the early-lifecycle subset a user may still cancel.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// Editable mirrors the server rule that only pending orders accept changes.
func (s OrderStatus) Editable() bool {
	return s == OrderPending
}

func (s OrderStatus) Label() string {
	switch s {
	case OrderOrdered:
		return "Ordered"
	case OrderConfirmed:
		return "Confirmed"
	case OrderSentToRestaurant:
		return "Sent"
	case OrderCompleted:
		return "Completed"
	case OrderCancelled:
		return "Cancelled"
	default:
		return "Pending"
	}
}

type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UserID         uint        `gorm:"not null;uniqueIndex:uq_user_order_date" json:"user_id"`
	UserName       string      `gorm:"-" json:"user_name,omitempty"`
	MenuID         uint        `gorm:"not null" json:"menu_id"`
	MenuName       string      `gorm:"-" json:"menu_name,omitempty"`
	RestaurantID   uint        `gorm:"not null" json:"restaurant_id"`
	RestaurantName string      `gorm:"-" json:"restaurant_name,omitempty"`
	OrderDate      string      `gorm:"type:varchar(10);not null;uniqueIndex:uq_user_order_date" json:"order_date"`
	Status         OrderStatus `gorm:"type:varchar(50);not null" json:"status"`
	TotalAmount    float64     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	OrderText      string      `gorm:"type:text" json:"order_text"`
	Notes          string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// SimpleOrderInput is the free-text order payload. OrderDate is only sent on create.
type SimpleOrderInput struct {
	RestaurantID uint   `json:"restaurant_id"`
	OrderDate    string `json:"order_date,omitempty"`
	OrderText    string `json:"order_text"`
	Notes        string `json:"notes,omitempty"`
}
