package router

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/client"
	"github.com/yeremiapane/lunchorder/database"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/services"
	"github.com/yeremiapane/lunchorder/session"
)

func startServer(t *testing.T) *client.Client {
	t.Helper()
	r, _ := setupAPI(t)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return client.New(server.URL+"/api", client.WithTimeout(5*time.Second))
}

func dayOf(t *testing.T, week services.Week, wd models.Weekday) services.Day {
	t.Helper()
	for _, d := range week.Days {
		if d.Weekday == wd {
			return d
		}
	}
	t.Fatalf("no %v in week", wd)
	return services.Day{}
}

func TestEmployeeOrderFlow(t *testing.T) {
	ctx := context.Background()
	api := startServer(t)

	sess := session.New(api.Auth, api, &session.MemoryStore{})
	user, err := sess.Login(ctx, database.DemoUserEmail, database.DemoUserPassword)
	require.NoError(t, err)
	assert.False(t, sess.IsAdmin())

	store := services.NewOrderStore(api.Orders)
	view := services.NewWeekView(store, 5)
	week, err := view.Load(ctx, user)
	require.NoError(t, err)
	require.Len(t, week.Days, 5)
	for _, d := range week.Days {
		assert.Nil(t, d.Order, d.Date)
	}

	monday := dayOf(t, week, models.Monday).Date
	resolver := services.NewAvailabilityResolver(api.Restaurants, api.Menus)
	editor := services.NewOrderEditor(resolver, store, api.Orders)

	avail, err := editor.Open(ctx, monday)
	require.NoError(t, err)
	require.False(t, avail.Empty())
	_, ok := avail.Option(2)
	assert.True(t, ok, "Green Bowl delivers on Mondays")

	require.NoError(t, editor.SelectRestaurant(1))
	require.NoError(t, editor.ApplyMotd())
	require.NoError(t, editor.SetNotes("no chili"))
	created, err := editor.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Penne arrabbiata", created.OrderText)
	assert.Equal(t, models.OrderPending, created.Status)

	stored, ok := store.Get(monday)
	require.True(t, ok)
	assert.Equal(t, created.ID, stored.ID)

	_, err = editor.Open(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, "no chili", editor.Draft().Notes)
	require.NoError(t, editor.SetText("Lasagne"))
	updated, err := editor.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Lasagne", updated.OrderText)

	cancelled, err := services.NewOrderCanceller(api.Orders, store).Cancel(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	_, ok = store.Get(monday)
	assert.False(t, ok)

	week, err = view.Load(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, dayOf(t, week, models.Monday).Order)

	require.NoError(t, sess.Logout(ctx))
	assert.Empty(t, api.Token())
	assert.False(t, sess.IsAuthenticated())
}

func TestEditorRejectsRestaurantNotDeliveringThatDay(t *testing.T) {
	ctx := context.Background()
	api := startServer(t)

	sess := session.New(api.Auth, api, &session.MemoryStore{})
	user, err := sess.Login(ctx, database.DemoUserEmail, database.DemoUserPassword)
	require.NoError(t, err)

	store := services.NewOrderStore(api.Orders)
	week, err := services.NewWeekView(store, 5).Load(ctx, user)
	require.NoError(t, err)
	tuesday := dayOf(t, week, models.Tuesday).Date

	editor := services.NewOrderEditor(services.NewAvailabilityResolver(api.Restaurants, api.Menus), store, api.Orders)
	_, err = editor.Open(ctx, tuesday)
	require.NoError(t, err)
	assert.ErrorIs(t, editor.SelectRestaurant(2), services.ErrUnknownRestaurant)

	require.NoError(t, editor.SelectRestaurant(1))
	assert.ErrorIs(t, editor.ApplyMotd(), services.ErrNoMotd)
}

func TestAdminFlow(t *testing.T) {
	ctx := context.Background()
	api := startServer(t)

	employee := client.New(api.BaseURL(), client.WithTimeout(5*time.Second))
	_, err := employee.Auth.Login(ctx, database.DemoUserEmail, database.DemoUserPassword)
	require.NoError(t, err)
	wednesday := nextWeekday(time.Wednesday)
	_, err = employee.Orders.CreateSimple(ctx, models.SimpleOrderInput{
		RestaurantID: 2, OrderDate: wednesday, OrderText: "Falafel bowl",
	})
	require.NoError(t, err)

	sess := session.New(api.Auth, api, &session.MemoryStore{})
	_, err = sess.Login(ctx, database.DemoAdminEmail, database.DemoAdminPassword)
	require.NoError(t, err)
	require.True(t, sess.IsAdmin())

	matrix := services.NewAvailabilityMatrix(api.Admin, services.KeepOnFailure)
	require.NoError(t, matrix.Load(ctx))
	assert.Equal(t, models.WeekdaySet{0, 2, 4}, matrix.Cell(2).Set)

	cell, err := matrix.Toggle(ctx, 2, models.Tuesday)
	require.NoError(t, err)
	assert.Equal(t, services.CellConfirmed, cell.Kind)
	assert.Equal(t, models.WeekdaySet{0, 1, 2, 4}, cell.Set)

	motd := services.NewMotdAdmin(api.Admin)
	require.NoError(t, motd.Save(ctx, models.Tuesday, 2, "Halloumi wrap"))
	rows, err := motd.Rows(ctx, models.Tuesday)
	require.NoError(t, err)
	found := false
	for _, row := range rows {
		if row.Restaurant.ID == 2 {
			found = true
			require.NotNil(t, row.MotdOption)
			assert.Equal(t, "Halloumi wrap", *row.MotdOption)
		}
	}
	assert.True(t, found)

	dispatcher := services.NewEmailDispatcher(api.Admin)
	grouped, err := dispatcher.Orders(ctx, wednesday)
	require.NoError(t, err)
	require.Len(t, grouped.Groups, 1)

	res, err := dispatcher.SendAll(ctx, wednesday)
	require.NoError(t, err)
	assert.Empty(t, res.Sent)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, uint(2), res.Skipped[0].RestaurantID)
}

func TestAdminOrderFeed(t *testing.T) {
	api := startServer(t)
	ctx := context.Background()

	employee := client.New(api.BaseURL(), client.WithTimeout(5*time.Second))
	_, err := employee.Auth.Login(ctx, database.DemoUserEmail, database.DemoUserPassword)
	require.NoError(t, err)
	err = employee.Admin.WatchOrders(ctx, func(models.OrderEvent) {})
	assert.True(t, client.IsStatus(err, 403), "employees cannot subscribe: %v", err)

	_, err = api.Auth.Login(ctx, database.DemoAdminEmail, database.DemoAdminPassword)
	require.NoError(t, err)

	watchCtx, cancel := context.WithCancel(ctx)
	events := make(chan models.OrderEvent, 8)
	done := make(chan error, 1)
	go func() {
		done <- api.Admin.WatchOrders(watchCtx, func(ev models.OrderEvent) { events <- ev })
	}()

	next := func() models.OrderEvent {
		select {
		case ev := <-events:
			return ev
		case <-time.After(3 * time.Second):
			t.Fatal("no feed event")
			return models.OrderEvent{}
		}
	}
	assert.Equal(t, models.EventConnected, next().Event)

	_, err = employee.Orders.CreateSimple(ctx, models.SimpleOrderInput{
		RestaurantID: 1, OrderDate: nextWeekday(time.Thursday), OrderText: "Carbonara",
	})
	require.NoError(t, err)

	ev := next()
	assert.Equal(t, models.EventOrderCreated, ev.Event)
	require.NotNil(t, ev.Order)
	assert.Equal(t, "Eve Employee", ev.Order.UserName)
	assert.Equal(t, "Pasta Place", ev.Order.RestaurantName)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestMenuEditsKeepEndDate(t *testing.T) {
	ctx := context.Background()
	api := startServer(t)
	_, err := api.Auth.Login(ctx, database.DemoAdminEmail, database.DemoAdminPassword)
	require.NoError(t, err)

	restaurant, err := api.Restaurants.Create(ctx, models.RestaurantInput{Name: "Soup Kitchen"})
	require.NoError(t, err)
	from := nextWeekday(time.Monday)
	start, err := calendar.ParseDate(from)
	require.NoError(t, err)
	until := calendar.FormatDate(start.AddDate(0, 0, 20))

	menu, err := api.Menus.Create(ctx, models.MenuInput{
		RestaurantID: restaurant.ID, Name: "Soups", AvailableFrom: from, AvailableUntil: models.Until(until),
	})
	require.NoError(t, err)
	require.Equal(t, models.EndDate(until), menu.AvailableUntil)

	_, err = api.Menus.Update(ctx, menu.ID, models.MenuInput{Name: "Winter soups"})
	require.NoError(t, err)
	got, err := api.Menus.Get(ctx, menu.ID)
	require.NoError(t, err)
	assert.Equal(t, "Winter soups", got.Name)
	assert.Equal(t, models.EndDate(until), got.AvailableUntil, "JSON rename keeps the end date")

	_, err = api.Menus.Update(ctx, menu.ID, models.MenuInput{
		Name: "Winter soups", File: &models.MenuFile{Name: `soups "v2".pdf`, Data: []byte("%PDF-1.4")},
	})
	require.NoError(t, err)
	got, err = api.Menus.Get(ctx, menu.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EndDate(until), got.AvailableUntil, "multipart update keeps the end date")
	assert.Equal(t, `soups "v2".pdf`, got.MenuFileName)

	editor := services.NewMenuAdmin(api.Menus)
	got, err = editor.Edit(ctx, menu.ID, func(f *models.MenuForm) { f.Description = "Hot" })
	require.NoError(t, err)
	assert.Equal(t, models.EndDate(until), got.AvailableUntil, "form edit keeps the end date")

	got, err = editor.Edit(ctx, menu.ID, func(f *models.MenuForm) { f.SpecifyEndDate = false })
	require.NoError(t, err)
	assert.True(t, got.AvailableUntil.IsOpen())

	_, err = api.Menus.Update(ctx, menu.ID, models.MenuInput{Name: "Soups"})
	require.NoError(t, err)
	got, err = api.Menus.Get(ctx, menu.ID)
	require.NoError(t, err)
	assert.True(t, got.AvailableUntil.IsOpen(), "an open window stays open")
}
