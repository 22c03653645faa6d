package services

import (
	"context"

	"github.com/yeremiapane/lunchorder/models"
)

type MenuAPI interface {
	Get(ctx context.Context, id uint) (models.Menu, error)
	Update(ctx context.Context, id uint, in models.MenuInput) (models.Menu, error)
}

// MenuAdmin edits existing menus through their form view, so fields the
// caller does not touch are sent back as they were loaded.
type MenuAdmin struct {
	api MenuAPI
}

func NewMenuAdmin(api MenuAPI) *MenuAdmin {
	return &MenuAdmin{api: api}
}

// Edit loads menu id, lets edit change its form and saves the result.
func (a *MenuAdmin) Edit(ctx context.Context, id uint, edit func(*models.MenuForm)) (models.Menu, error) {
	menu, err := a.api.Get(ctx, id)
	if err != nil {
		return models.Menu{}, err
	}
	form := models.NewMenuForm(menu)
	edit(&form)
	return a.api.Update(ctx, id, form.Input())
}
