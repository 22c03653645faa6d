package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NoEndDateSentinel is how the server stores a menu without an end date.
const NoEndDateSentinel = "2099-12-31"

// EndDate is a menu's inclusive last day. The zero value means no end date;
// the sentinel only exists on the wire and in storage.
type EndDate string

func (e EndDate) IsOpen() bool {
	return e == "" || e == NoEndDateSentinel
}

func (e EndDate) String() string {
	if e.IsOpen() {
		return "No end date"
	}
	return string(e)
}

// FormValue is the value shown in an edit field: empty when open.
func (e EndDate) FormValue() string {
	if e.IsOpen() {
		return ""
	}
	return string(e)
}

func (e EndDate) wire() string {
	if e.IsOpen() {
		return NoEndDateSentinel
	}
	return string(e)
}

func (e EndDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

func (e *EndDate) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("available_until: %w", err)
	}
	if s == nil || *s == NoEndDateSentinel {
		*e = ""
		return nil
	}
	*e = EndDate(*s)
	return nil
}

func (e EndDate) Value() (driver.Value, error) {
	return e.wire(), nil
}

func (e *EndDate) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		s = v.Format("2006-01-02")
	default:
		return fmt.Errorf("unsupported end date type %T", src)
	}
	if s == NoEndDateSentinel {
		s = ""
	}
	*e = EndDate(s)
	return nil
}

type Menu struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	RestaurantID   uint       `gorm:"not null;index:idx_menu_restaurant_dates" json:"restaurant_id"`
	RestaurantName string     `gorm:"-" json:"restaurant_name,omitempty"`
	Name           string     `gorm:"type:varchar(200);not null" json:"name"`
	Description    string     `gorm:"type:text" json:"description,omitempty"`
	AvailableFrom  string     `gorm:"type:varchar(10);not null;index:idx_menu_restaurant_dates" json:"available_from"`
	AvailableUntil EndDate    `gorm:"type:varchar(10);not null;index:idx_menu_restaurant_dates" json:"available_until"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	MenuText       string     `gorm:"type:text" json:"menu_text,omitempty"`
	MenuFileURL    string     `gorm:"type:varchar(500)" json:"menu_file_url,omitempty"`
	MenuFileName   string     `gorm:"type:varchar(255)" json:"menu_file_name,omitempty"`
	MenuFileMime   string     `gorm:"type:varchar(100)" json:"menu_file_mime,omitempty"`
	Items          []MenuItem `gorm:"foreignKey:MenuID" json:"items,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Covers reports whether date (YYYY-MM-DD) lies in the menu's inclusive window.
// ISO dates compare correctly as strings.
func (m *Menu) Covers(date string) bool {
	if date < m.AvailableFrom {
		return false
	}
	return m.AvailableUntil.IsOpen() || date <= string(m.AvailableUntil)
}

// HasImage reports whether the attached file can be shown inline.
func (m *Menu) HasImage() bool {
	return len(m.MenuFileMime) >= 6 && m.MenuFileMime[:6] == "image/"
}

type MenuItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MenuID       uint      `gorm:"not null;index" json:"menu_id"`
	Name         string    `gorm:"type:varchar(200);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	DietaryInfo  string    `gorm:"type:varchar(200)" json:"dietary_info,omitempty"`
	IsAvailable  bool      `gorm:"not null" json:"is_available"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MenuFile is an uploaded menu attachment (PDF or image).
type MenuFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// MenuInput is the admin create/update payload. It is sent as JSON, or as a
// multipart form when File is set. A nil AvailableUntil leaves the end date
// unchanged on update and means no end date on create; a pointer to the zero
// EndDate opens the window.
type MenuInput struct {
	RestaurantID   uint      `json:"restaurant_id,omitempty"`
	Name           string    `json:"name,omitempty"`
	Description    string    `json:"description,omitempty"`
	AvailableFrom  string    `json:"available_from,omitempty"`
	AvailableUntil *EndDate  `json:"available_until,omitempty"`
	MenuText       *string   `json:"menu_text,omitempty"`
	ClearFile      bool      `json:"clear_file,omitempty"`
	File           *MenuFile `json:"-"`
}

// OpenEnded returns an end date pointer meaning no end date.
func OpenEnded() *EndDate {
	e := EndDate("")
	return &e
}

// Until returns an end date pointer for the given YYYY-MM-DD day.
func Until(date string) *EndDate {
	e := EndDate(date)
	return &e
}

// MenuFilter narrows a menu listing.
type MenuFilter struct {
	RestaurantID uint
	DateFrom     string
	DateTo       string
}
