package models

import "time"

// MotdOption is the suggested order for a (restaurant, weekday) pair.
type MotdOption struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;uniqueIndex:uq_restaurant_motd_weekday" json:"restaurant_id"`
	Weekday      Weekday   `gorm:"not null;uniqueIndex:uq_restaurant_motd_weekday" json:"weekday"`
	OptionText   string    `gorm:"type:text;not null" json:"option_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type MotdRow struct {
	Restaurant Restaurant `json:"restaurant"`
	MotdOption *string    `json:"motd_option"`
}

type MotdInput struct {
	Weekday      Weekday `json:"weekday"`
	RestaurantID uint    `json:"restaurant_id"`
	OptionText   string  `json:"option_text"`
}
