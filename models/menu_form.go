package models

import "strings"

// MenuForm is the editable view of a menu. The no-end-date sentinel never
// reaches it: an open window is SpecifyEndDate=false with an empty field.
type MenuForm struct {
	RestaurantID   uint
	Name           string
	Description    string
	AvailableFrom  string
	SpecifyEndDate bool
	AvailableUntil string
	MenuText       string
}

func NewMenuForm(m Menu) MenuForm {
	return MenuForm{
		RestaurantID:   m.RestaurantID,
		Name:           m.Name,
		Description:    m.Description,
		AvailableFrom:  m.AvailableFrom,
		SpecifyEndDate: !m.AvailableUntil.IsOpen(),
		AvailableUntil: m.AvailableUntil.FormValue(),
		MenuText:       m.MenuText,
	}
}

func (f MenuForm) Input() MenuInput {
	in := MenuInput{
		RestaurantID:  f.RestaurantID,
		Name:          strings.TrimSpace(f.Name),
		Description:   strings.TrimSpace(f.Description),
		AvailableFrom: f.AvailableFrom,
	}
	// The form always states the end date, so an untouched date survives.
	in.AvailableUntil = OpenEnded()
	if f.SpecifyEndDate && f.AvailableUntil != "" {
		in.AvailableUntil = Until(f.AvailableUntil)
	}
	text := f.MenuText
	in.MenuText = &text
	return in
}
