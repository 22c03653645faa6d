package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/feed"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

var (
	errWeekendOrder          = errors.New("Orders can only be placed Monday to Friday")
	errRestaurantUnavailable = errors.New("Restaurant is not available on the selected day")
	errNoMenuForDate         = errors.New("Menu not found for this restaurant/date")
	errDuplicateOrder        = errors.New("You already have an order for this date")
	errOrderNotPending       = errors.New("Can only update pending orders")
	errOrderNotCancellable   = errors.New("Only pending or confirmed orders can be cancelled")
)

type OrderController struct {
	DB   *gorm.DB
	Feed *feed.Hub
}

func NewOrderController(db *gorm.DB, hub *feed.Hub) *OrderController {
	return &OrderController{DB: db, Feed: hub}
}

type simpleOrderRequest struct {
	RestaurantID uint   `json:"restaurant_id" binding:"required"`
	OrderDate    string `json:"order_date" binding:"required,datetime=2006-01-02"`
	OrderText    string `json:"order_text" binding:"required,max=2000"`
	Notes        string `json:"notes" binding:"max=1000"`
}

type simpleOrderUpdateRequest struct {
	RestaurantID uint   `json:"restaurant_id" binding:"required"`
	OrderText    string `json:"order_text" binding:"required,max=2000"`
	Notes        string `json:"notes" binding:"max=1000"`
}

// List returns the caller's orders, optionally filtered by status and date range.
func (oc *OrderController) List(c *gin.Context) {
	q := oc.DB.Where("user_id = ?", currentUserID(c))
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	for param, cond := range map[string]string{"date_from": "order_date >= ?", "date_to": "order_date <= ?"} {
		if v := c.Query(param); v != "" {
			if !validDate(v) {
				utils.RespondValidation(c, map[string][]string{param: {"Not a valid date."}})
				return
			}
			q = q.Where(cond, v)
		}
	}

	var orders []models.Order
	if err := q.Order("order_date DESC").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load orders"))
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	decorateOrders(oc.DB, orders)
	utils.RespondJSON(c, http.StatusOK, gin.H{"orders": orders})
}

// decorateOrders fills the display names of restaurants, menus and users.
func decorateOrders(db *gorm.DB, orders []models.Order) {
	if len(orders) == 0 {
		return
	}
	restaurants := restaurantNames(db)

	var menus []models.Menu
	db.Select("id", "name").Find(&menus)
	menuNames := make(map[uint]string, len(menus))
	for _, m := range menus {
		menuNames[m.ID] = m.Name
	}

	userIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
	}
	var users []models.User
	db.Where("id IN ?", userIDs).Find(&users)
	userNames := make(map[uint]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.DisplayName()
	}

	for i := range orders {
		orders[i].RestaurantName = restaurants[orders[i].RestaurantID]
		orders[i].MenuName = menuNames[orders[i].MenuID]
		orders[i].UserName = userNames[orders[i].UserID]
	}
}

func (oc *OrderController) Get(c *gin.Context) {
	order, ok := oc.findOwn(c)
	if !ok {
		return
	}
	orders := []models.Order{order}
	decorateOrders(oc.DB, orders)
	utils.RespondJSON(c, http.StatusOK, orders[0])
}

func (oc *OrderController) findOwn(c *gin.Context) (models.Order, bool) {
	var order models.Order
	id, ok := paramID(c, "id")
	if !ok {
		return order, false
	}
	if err := oc.DB.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Order not found"))
		return order, false
	}
	return order, true
}

// orderableMenu applies the ordering rules for a restaurant on a date and
// returns the menu the order will be tied to.
func orderableMenu(db *gorm.DB, restaurantID uint, date string) (*models.Menu, error) {
	weekday, err := calendar.WeekdayOf(date)
	if errors.Is(err, calendar.ErrWeekend) {
		return nil, errWeekendOrder
	}
	if err != nil {
		return nil, err
	}

	var rows []models.RestaurantAvailability
	if err := db.Where("restaurant_id = ?", restaurantID).Find(&rows).Error; err != nil {
		return nil, err
	}
	available := false
	for _, r := range rows {
		if r.Weekday == weekday && r.IsAvailable {
			available = true
		}
	}
	if !available {
		return nil, errRestaurantUnavailable
	}

	menu, err := coveringMenu(db, restaurantID, date)
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, errNoMenuForDate
	}
	return menu, nil
}

// CreateSimple places a free-text order. A cancelled order on the same date
// is reused, since (user, date) is unique.
func (oc *OrderController) CreateSimple(c *gin.Context) {
	var req simpleOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrderDate < today() {
		utils.RespondValidation(c, map[string][]string{"order_date": {"Order date cannot be in the past"}})
		return
	}
	orderText := strings.TrimSpace(req.OrderText)
	if orderText == "" {
		utils.RespondValidation(c, map[string][]string{"order_text": {"Missing data for required field."}})
		return
	}

	userID := currentUserID(c)
	var order models.Order
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		menu, err := orderableMenu(tx, req.RestaurantID, req.OrderDate)
		if err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND order_date = ?", userID, req.OrderDate).First(&order).Error
		switch {
		case err == nil && order.Status != models.OrderCancelled:
			return errDuplicateOrder
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		order.UserID = userID
		order.OrderDate = req.OrderDate
		order.RestaurantID = req.RestaurantID
		order.MenuID = menu.ID
		order.OrderText = orderText
		order.Notes = strings.TrimSpace(req.Notes)
		order.Status = models.OrderPending
		order.TotalAmount = 0
		return tx.Save(&order).Error
	})
	if err != nil {
		oc.respondOrderError(c, err, "Failed to create order")
		return
	}

	orders := []models.Order{order}
	decorateOrders(oc.DB, orders)
	utils.InfoLogger.Infof("Order %d placed by user %d for %s", order.ID, userID, order.OrderDate)
	oc.Feed.PublishOrder(models.EventOrderCreated, orders[0])
	utils.RespondJSON(c, http.StatusCreated, gin.H{"message": "Order created successfully", "order": orders[0]})
}

// UpdateSimple changes restaurant, text and notes of a pending order.
func (oc *OrderController) UpdateSimple(c *gin.Context) {
	order, ok := oc.findOwn(c)
	if !ok {
		return
	}
	var req simpleOrderUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	orderText := strings.TrimSpace(req.OrderText)
	if orderText == "" {
		utils.RespondValidation(c, map[string][]string{"order_text": {"Missing data for required field."}})
		return
	}
	if order.Status != models.OrderPending {
		utils.RespondError(c, http.StatusBadRequest, errOrderNotPending)
		return
	}

	menu, err := orderableMenu(oc.DB, req.RestaurantID, order.OrderDate)
	if err != nil {
		oc.respondOrderError(c, err, "Failed to update order")
		return
	}
	order.RestaurantID = req.RestaurantID
	order.MenuID = menu.ID
	order.OrderText = orderText
	order.Notes = strings.TrimSpace(req.Notes)
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to update order"))
		return
	}

	orders := []models.Order{order}
	decorateOrders(oc.DB, orders)
	oc.Feed.PublishOrder(models.EventOrderUpdated, orders[0])
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Order updated successfully", "order": orders[0]})
}

func (oc *OrderController) respondOrderError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, errWeekendOrder), errors.Is(err, errRestaurantUnavailable),
		errors.Is(err, errNoMenuForDate), errors.Is(err, errDuplicateOrder):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Errorf("%s: %v", fallback, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New(fallback))
	}
}

// Cancel marks the order cancelled; the row stays.
func (oc *OrderController) Cancel(c *gin.Context) {
	order, ok := oc.findOwn(c)
	if !ok {
		return
	}
	if !order.Status.Cancellable() {
		utils.RespondError(c, http.StatusBadRequest, errOrderNotCancellable)
		return
	}
	order.Status = models.OrderCancelled
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to cancel order"))
		return
	}
	utils.InfoLogger.Infof("Order %d cancelled by user %d", order.ID, order.UserID)
	oc.Feed.PublishOrder(models.EventOrderCancelled, order)
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

// MissingDays lists the dates in the next days_ahead days (from start_date,
// default today) without a live order.
func (oc *OrderController) MissingDays(c *gin.Context) {
	start, ok := queryDate(c, "start_date")
	if !ok {
		return
	}
	daysAhead := queryInt(c, "days_ahead", 7)
	if daysAhead > 366 {
		daysAhead = 366
	}
	from, _ := calendar.ParseDate(start)
	end := calendar.FormatDate(from.AddDate(0, 0, daysAhead-1))

	var orders []models.Order
	err := oc.DB.Where("user_id = ? AND order_date BETWEEN ? AND ? AND status <> ?",
		currentUserID(c), start, end, models.OrderCancelled).Find(&orders).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load orders"))
		return
	}
	ordered := make(map[string]bool, len(orders))
	for _, o := range orders {
		ordered[o.OrderDate] = true
	}

	missing := []string{}
	for i := 0; i < daysAhead; i++ {
		if date := calendar.FormatDate(from.AddDate(0, 0, i)); !ordered[date] {
			missing = append(missing, date)
		}
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"missing_dates": missing, "count": len(missing)})
}
