package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

// ErrRestaurantEmailMissing blocks sending a summary to a restaurant without an address.
var ErrRestaurantEmailMissing = errors.New("restaurant has no email address")

type EmailAPI interface {
	OrdersByDate(ctx context.Context, date string) (models.OrdersByDate, error)
	EmailDraft(ctx context.Context, date string, restaurantID uint) (models.EmailDraft, error)
	SendEmail(ctx context.Context, date string, restaurantID uint) (string, error)
	SendAllEmails(ctx context.Context, date string) (models.SendAllResult, error)
}

// EmailDispatcher prepares and sends the per-restaurant order summaries of a day.
type EmailDispatcher struct {
	api EmailAPI
}

func NewEmailDispatcher(api EmailAPI) *EmailDispatcher {
	return &EmailDispatcher{api: api}
}

func (d *EmailDispatcher) Orders(ctx context.Context, date string) (models.OrdersByDate, error) {
	return d.api.OrdersByDate(ctx, date)
}

// CanSend reports whether a summary could be sent to r.
func CanSend(r models.Restaurant) error {
	if strings.TrimSpace(r.Email) == "" {
		return ErrRestaurantEmailMissing
	}
	return nil
}

func (d *EmailDispatcher) Draft(ctx context.Context, date string, r models.Restaurant) (models.EmailDraft, error) {
	if err := CanSend(r); err != nil {
		return models.EmailDraft{}, err
	}
	return d.api.EmailDraft(ctx, date, r.ID)
}

// Send refuses before any call when r has no email address.
func (d *EmailDispatcher) Send(ctx context.Context, date string, r models.Restaurant) (string, error) {
	if err := CanSend(r); err != nil {
		return "", err
	}
	msg, err := d.api.SendEmail(ctx, date, r.ID)
	if err != nil {
		return "", err
	}
	utils.InfoLogger.Infof("order summary for %s sent to %s (%s)", date, r.Name, r.Email)
	return msg, nil
}

func (d *EmailDispatcher) SendAll(ctx context.Context, date string) (models.SendAllResult, error) {
	res, err := d.api.SendAllEmails(ctx, date)
	if err != nil {
		return res, err
	}
	for _, s := range res.Skipped {
		utils.InfoLogger.Infof("order summary for %s skipped %s: %s", date, s.Name, s.Reason)
	}
	return res, nil
}
