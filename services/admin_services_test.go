package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/lunchorder/models"
)

type fakeEmailAPI struct {
	sent []uint
}

func (f *fakeEmailAPI) OrdersByDate(ctx context.Context, date string) (models.OrdersByDate, error) {
	return models.OrdersByDate{Date: date}, nil
}

func (f *fakeEmailAPI) EmailDraft(ctx context.Context, date string, id uint) (models.EmailDraft, error) {
	return models.EmailDraft{RestaurantID: id, Date: date}, nil
}

func (f *fakeEmailAPI) SendEmail(ctx context.Context, date string, id uint) (string, error) {
	f.sent = append(f.sent, id)
	return "Email logged", nil
}

func (f *fakeEmailAPI) SendAllEmails(ctx context.Context, date string) (models.SendAllResult, error) {
	return models.SendAllResult{Skipped: []models.SkippedRestaurant{{RestaurantID: 2, Name: "B", Reason: "missing email"}}}, nil
}

func TestEmailSendRequiresAddress(t *testing.T) {
	api := &fakeEmailAPI{}
	d := NewEmailDispatcher(api)

	_, err := d.Send(context.Background(), tuesday, models.Restaurant{ID: 1, Name: "A"})
	assert.ErrorIs(t, err, ErrRestaurantEmailMissing)
	assert.Empty(t, api.sent)

	msg, err := d.Send(context.Background(), tuesday, models.Restaurant{ID: 1, Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Email logged", msg)
	assert.Equal(t, []uint{1}, api.sent)

	res, err := d.SendAll(context.Background(), tuesday)
	require.NoError(t, err)
	assert.Len(t, res.Skipped, 1)
}

type fakeMotdAPI struct {
	put []models.MotdInput
}

func (f *fakeMotdAPI) Motd(ctx context.Context, weekday models.Weekday) ([]models.MotdRow, error) {
	return []models.MotdRow{{Restaurant: models.Restaurant{ID: 1}}}, nil
}

func (f *fakeMotdAPI) PutMotd(ctx context.Context, in models.MotdInput) error {
	f.put = append(f.put, in)
	return nil
}

func TestMotdAdmin(t *testing.T) {
	api := &fakeMotdAPI{}
	a := NewMotdAdmin(api)
	a.now = func() time.Time { return time.Date(2025, 6, 14, 9, 0, 0, 0, time.Local) }

	assert.Equal(t, models.Friday, a.DefaultWeekday())

	_, err := a.Rows(context.Background(), models.Weekday(6))
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	require.NoError(t, a.Save(context.Background(), models.Monday, 1, "  Soup  "))
	assert.Equal(t, models.MotdInput{Weekday: models.Monday, RestaurantID: 1, OptionText: "Soup"}, api.put[0])
}

func TestOrderCanceller(t *testing.T) {
	orders := &fakeOrders{}
	store := NewOrderStore(orders)
	c := NewOrderCanceller(orders, store)
	ctx := context.Background()

	_, err := c.Cancel(ctx, tuesday)
	assert.ErrorIs(t, err, ErrNoOrder)

	store.Put(tuesday, models.Order{ID: 5, Status: models.OrderSentToRestaurant})
	_, err = c.Cancel(ctx, tuesday)
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Empty(t, orders.cancelled)

	store.Put(tuesday, models.Order{ID: 5, Status: models.OrderConfirmed})
	o, err := c.Cancel(ctx, tuesday)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, o.Status)
	assert.Equal(t, []uint{5}, orders.cancelled)
	_, ok := store.Get(tuesday)
	assert.False(t, ok)
}

func TestWeekView(t *testing.T) {
	orders := &fakeOrders{listed: []models.Order{{ID: 1, OrderDate: "2025-06-10", Status: models.OrderPending}}}
	store := NewOrderStore(orders)
	v := NewWeekView(store, 5)
	v.now = func() time.Time { return time.Date(2025, 6, 7, 12, 0, 0, 0, time.Local) }

	week, err := v.Load(context.Background(), models.User{BirthDate: "1990-06-07"})
	require.NoError(t, err)
	assert.True(t, week.Birthday)
	require.Len(t, week.Days, 5)
	assert.Equal(t, "2025-06-09", week.Days[0].Date)
	assert.Equal(t, models.Monday, week.Days[0].Weekday)
	assert.Nil(t, week.Days[0].Order)
	require.NotNil(t, week.Days[1].Order)
	assert.Equal(t, uint(1), week.Days[1].Order.ID)
	assert.Equal(t, "2025-06-13", week.Days[4].Date)
}

type fakeMenuAPI struct {
	menu models.Menu
	sent models.MenuInput
}

func (f *fakeMenuAPI) Get(ctx context.Context, id uint) (models.Menu, error) {
	return f.menu, nil
}

func (f *fakeMenuAPI) Update(ctx context.Context, id uint, in models.MenuInput) (models.Menu, error) {
	f.sent = in
	return f.menu, nil
}

func TestMenuAdminEditKeepsEndDate(t *testing.T) {
	api := &fakeMenuAPI{menu: models.Menu{ID: 4, Name: "Summer", AvailableFrom: "2025-06-01", AvailableUntil: "2025-08-31"}}

	_, err := NewMenuAdmin(api).Edit(context.Background(), 4, func(f *models.MenuForm) { f.Name = "Summer specials" })
	require.NoError(t, err)
	assert.Equal(t, "Summer specials", api.sent.Name)
	require.NotNil(t, api.sent.AvailableUntil)
	assert.Equal(t, models.EndDate("2025-08-31"), *api.sent.AvailableUntil)

	_, err = NewMenuAdmin(api).Edit(context.Background(), 4, func(f *models.MenuForm) { f.SpecifyEndDate = false })
	require.NoError(t, err)
	require.NotNil(t, api.sent.AvailableUntil)
	assert.True(t, api.sent.AvailableUntil.IsOpen())
}
