package models

import "time"

type Restaurant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	ContactName string    `gorm:"type:varchar(200)" json:"contact_name,omitempty"`
	PhoneNumber string    `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	Email       string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Address     string    `gorm:"type:text" json:"address,omitempty"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Weekdays is only populated by endpoints that join availability.
	Weekdays WeekdaySet `gorm:"-" json:"available_weekdays,omitempty"`

	// Set on the admin orders-by-date view.
	EmailSent   bool       `gorm:"-" json:"email_sent,omitempty"`
	EmailSentAt *time.Time `gorm:"-" json:"email_sent_at,omitempty"`
}

// RestaurantAvailability is one (restaurant, weekday) row of the weekday matrix.
type RestaurantAvailability struct {
	ID           uint      `gorm:"primaryKey"`
	RestaurantID uint      `gorm:"not null;uniqueIndex:uq_restaurant_weekday"`
	Weekday      Weekday   `gorm:"not null;uniqueIndex:uq_restaurant_weekday"`
	IsAvailable  bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type RestaurantInput struct {
	Name        string `json:"name,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
}

// AvailableRestaurant is one entry of the per-date availability listing.
type AvailableRestaurant struct {
	Restaurant Restaurant `json:"restaurant"`
	Menu       *Menu      `json:"menu"`
	MotdOption *string    `json:"motd_option"`
}
