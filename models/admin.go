package models

import "time"

type DashboardStats struct {
	Stats struct {
		TotalUsers                 int64 `json:"total_users"`
		TotalRestaurants           int64 `json:"total_restaurants"`
		TotalMenus                 int64 `json:"total_menus"`
		OrdersThisWeek             int64 `json:"orders_this_week"`
		OrdersToday                int64 `json:"orders_today"`
		UsersWithoutOrdersTomorrow int   `json:"users_without_orders_tomorrow"`
	} `json:"stats"`
	StatusBreakdown map[OrderStatus]int64 `json:"status_breakdown"`
	RecentOrders    []Order               `json:"recent_orders"`
}

// OrderGroup is one restaurant's orders for a day on the admin view.
type OrderGroup struct {
	Restaurant Restaurant `json:"restaurant"`
	Orders     []Order    `json:"orders"`
}

type OrdersByDate struct {
	Date   string       `json:"date"`
	Groups []OrderGroup `json:"groups"`
}

// EmailDraft is the order summary prepared for one restaurant and day.
type EmailDraft struct {
	RestaurantID uint   `json:"restaurant_id"`
	Date         string `json:"date"`
	To           string `json:"to"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
}

// RestaurantOrderEmailLog records that a summary was sent (logged) for a day.
type RestaurantOrderEmailLog struct {
	ID           uint      `gorm:"primaryKey"`
	RestaurantID uint      `gorm:"not null;uniqueIndex:uq_restaurant_order_email_date"`
	OrderDate    string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_restaurant_order_email_date"`
	SentByUserID *uint     `gorm:"index"`
	CreatedAt    time.Time `gorm:"not null"`
}

type SkippedRestaurant struct {
	RestaurantID uint   `json:"restaurant_id"`
	Name         string `json:"name"`
	Reason       string `json:"reason"`
}

type SendAllResult struct {
	Message string              `json:"message"`
	Sent    []uint              `json:"sent"`
	Skipped []SkippedRestaurant `json:"skipped"`
}
