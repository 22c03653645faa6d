package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/database"
	"github.com/yeremiapane/lunchorder/feed"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

var (
	errNoOrdersForDate  = errors.New("No orders found for this date")
	errNoRestaurantMail = errors.New("Restaurant has no email address")
)

type AdminController struct {
	DB   *gorm.DB
	Feed *feed.Hub
}

func NewAdminController(db *gorm.DB, hub *feed.Hub) *AdminController {
	return &AdminController{DB: db, Feed: hub}
}

type adminEmailRequest struct {
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	RestaurantID uint   `json:"restaurant_id"`
}

func (ac *AdminController) Dashboard(c *gin.Context) {
	now := calendar.Midnight(time.Now())
	todayStr := calendar.FormatDate(now)
	weekTo := calendar.FormatDate(now.AddDate(0, 0, 7))
	tomorrow := calendar.FormatDate(now.AddDate(0, 0, 1))

	var stats models.DashboardStats
	ac.DB.Model(&models.User{}).Where("is_active = ?", true).Count(&stats.Stats.TotalUsers)
	ac.DB.Model(&models.Restaurant{}).Where("is_active = ?", true).Count(&stats.Stats.TotalRestaurants)
	ac.DB.Model(&models.Menu{}).Where("is_active = ?", true).Count(&stats.Stats.TotalMenus)
	ac.DB.Model(&models.Order{}).Where("order_date BETWEEN ? AND ?", todayStr, weekTo).Count(&stats.Stats.OrdersThisWeek)
	ac.DB.Model(&models.Order{}).Where("order_date = ?", todayStr).Count(&stats.Stats.OrdersToday)

	missing, err := usersWithoutOrders(ac.DB, tomorrow)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load dashboard"))
		return
	}
	stats.Stats.UsersWithoutOrdersTomorrow = len(missing)

	var breakdown []struct {
		Status models.OrderStatus
		Count  int64
	}
	ac.DB.Model(&models.Order{}).
		Select("status, COUNT(id) AS count").
		Where("order_date BETWEEN ? AND ?", todayStr, weekTo).
		Group("status").
		Scan(&breakdown)
	stats.StatusBreakdown = make(map[models.OrderStatus]int64, len(breakdown))
	for _, b := range breakdown {
		stats.StatusBreakdown[b.Status] = b.Count
	}

	ac.DB.Order("created_at DESC").Limit(10).Find(&stats.RecentOrders)
	decorateOrders(ac.DB, stats.RecentOrders)
	if stats.RecentOrders == nil {
		stats.RecentOrders = []models.Order{}
	}
	utils.RespondJSON(c, http.StatusOK, stats)
}

// OrdersByDate groups the day's live orders by restaurant, flagging the
// restaurants whose summary was already sent.
func (ac *AdminController) OrdersByDate(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	var orders []models.Order
	err := ac.DB.Where("order_date = ? AND status <> ?", date, models.OrderCancelled).
		Order("created_at").Find(&orders).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load orders"))
		return
	}
	decorateOrders(ac.DB, orders)

	byRestaurant := make(map[uint][]models.Order)
	for _, o := range orders {
		byRestaurant[o.RestaurantID] = append(byRestaurant[o.RestaurantID], o)
	}

	var logs []models.RestaurantOrderEmailLog
	ac.DB.Where("order_date = ?", date).Find(&logs)
	sent := make(map[uint]time.Time, len(logs))
	for _, l := range logs {
		sent[l.RestaurantID] = l.CreatedAt
	}

	result := models.OrdersByDate{Date: date, Groups: []models.OrderGroup{}}
	if len(byRestaurant) > 0 {
		ids := make([]uint, 0, len(byRestaurant))
		for id := range byRestaurant {
			ids = append(ids, id)
		}
		var restaurants []models.Restaurant
		ac.DB.Where("id IN ?", ids).Order("name").Find(&restaurants)
		for _, r := range restaurants {
			if at, ok := sent[r.ID]; ok {
				r.EmailSent = true
				sentAt := at
				r.EmailSentAt = &sentAt
			}
			result.Groups = append(result.Groups, models.OrderGroup{Restaurant: r, Orders: byRestaurant[r.ID]})
		}
	}
	utils.RespondJSON(c, http.StatusOK, result)
}

// liveOrders returns the restaurant's non-cancelled orders for date.
func liveOrders(db *gorm.DB, restaurantID uint, date string) ([]models.Order, error) {
	var orders []models.Order
	err := db.Where("restaurant_id = ? AND order_date = ? AND status <> ?", restaurantID, date, models.OrderCancelled).
		Order("created_at").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	decorateOrders(db, orders)
	return orders, nil
}

func buildDraft(r models.Restaurant, date string, orders []models.Order) models.EmailDraft {
	day := date
	if t, err := calendar.ParseDate(date); err == nil {
		day = t.Format("Monday, January 02, 2006")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order Summary - %s\n", r.Name)
	fmt.Fprintf(&b, "Date: %s\n", day)
	fmt.Fprintf(&b, "Total Orders: %d\n\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&b, "%s\n  %s\n", o.UserName, o.OrderText)
		if o.Notes != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", o.Notes)
		}
		b.WriteString("\n")
	}

	return models.EmailDraft{
		RestaurantID: r.ID,
		Date:         date,
		To:           r.Email,
		Subject:      "Order Summary for " + day,
		Body:         strings.TrimRight(b.String(), "\n"),
	}
}

func (ac *AdminController) bindEmailRequest(c *gin.Context) (adminEmailRequest, models.Restaurant, bool) {
	var req adminEmailRequest
	var restaurant models.Restaurant
	if !bindJSON(c, &req) {
		return req, restaurant, false
	}
	if req.RestaurantID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant_id and date are required"))
		return req, restaurant, false
	}
	if err := ac.DB.First(&restaurant, req.RestaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Restaurant not found"))
		return req, restaurant, false
	}
	return req, restaurant, true
}

func (ac *AdminController) EmailDraft(c *gin.Context) {
	req, restaurant, ok := ac.bindEmailRequest(c)
	if !ok {
		return
	}
	orders, err := liveOrders(ac.DB, restaurant.ID, req.Date)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load orders"))
		return
	}
	if len(orders) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errNoOrdersForDate)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"draft": buildDraft(restaurant, req.Date, orders)})
}

// SendEmail records the restaurant's summary as sent. The summary is logged,
// not mailed.
func (ac *AdminController) SendEmail(c *gin.Context) {
	req, restaurant, ok := ac.bindEmailRequest(c)
	if !ok {
		return
	}
	if err := sendSummary(ac.DB, restaurant, req.Date, currentUserID(c)); err != nil {
		if errors.Is(err, errNoOrdersForDate) || errors.Is(err, errNoRestaurantMail) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.ErrorLogger.Errorf("send summary to restaurant %d: %v", restaurant.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to send order summary"))
		return
	}
	ac.Feed.PublishSummary(restaurant.ID, req.Date)
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Order summary sent to " + restaurant.Name})
}

func sendSummary(db *gorm.DB, restaurant models.Restaurant, date string, adminID uint) error {
	if strings.TrimSpace(restaurant.Email) == "" {
		return errNoRestaurantMail
	}
	return db.Transaction(func(tx *gorm.DB) error {
		orders, err := liveOrders(tx, restaurant.ID, date)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			return errNoOrdersForDate
		}

		draft := buildDraft(restaurant, date, orders)
		utils.InfoLogger.WithField("to", draft.To).
			WithField("subject", draft.Subject).
			Infof("Order summary email:\n%s", draft.Body)

		entry := models.RestaurantOrderEmailLog{RestaurantID: restaurant.ID, OrderDate: date, CreatedAt: time.Now()}
		if adminID != 0 {
			entry.SentByUserID = &adminID
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "order_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"sent_by_user_id", "created_at"}),
		}).Create(&entry).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("restaurant_id = ? AND order_date = ? AND status = ?", restaurant.ID, date, models.OrderConfirmed).
			Update("status", models.OrderSentToRestaurant).Error
	})
}

// SendAllEmails sends the summary of every restaurant with orders on the date,
// skipping restaurants without an email address.
func (ac *AdminController) SendAllEmails(c *gin.Context) {
	var req adminEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	var ids []uint
	err := ac.DB.Model(&models.Order{}).
		Where("order_date = ? AND status <> ?", req.Date, models.OrderCancelled).
		Distinct().Pluck("restaurant_id", &ids).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load orders"))
		return
	}

	result := models.SendAllResult{Sent: []uint{}, Skipped: []models.SkippedRestaurant{}}
	var restaurants []models.Restaurant
	if len(ids) > 0 {
		ac.DB.Where("id IN ?", ids).Order("name").Find(&restaurants)
	}
	for _, r := range restaurants {
		err := sendSummary(ac.DB, r, req.Date, currentUserID(c))
		switch {
		case err == nil:
			result.Sent = append(result.Sent, r.ID)
			ac.Feed.PublishSummary(r.ID, req.Date)
		case errors.Is(err, errNoRestaurantMail), errors.Is(err, errNoOrdersForDate):
			result.Skipped = append(result.Skipped, models.SkippedRestaurant{RestaurantID: r.ID, Name: r.Name, Reason: err.Error()})
		default:
			utils.ErrorLogger.Errorf("send summary to restaurant %d: %v", r.ID, err)
			result.Skipped = append(result.Skipped, models.SkippedRestaurant{RestaurantID: r.ID, Name: r.Name, Reason: "Failed to send order summary"})
		}
	}
	result.Message = fmt.Sprintf("Sent %d summaries, skipped %d", len(result.Sent), len(result.Skipped))
	utils.RespondJSON(c, http.StatusOK, result)
}

// GetMotd lists active restaurants with their MOTD option for a weekday
// (default: today's, clamped to Friday).
func (ac *AdminController) GetMotd(c *gin.Context) {
	weekday := calendar.DefaultMotdWeekday(time.Now())
	if raw := c.Query("weekday"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || !models.Weekday(v).Valid() {
			utils.RespondValidation(c, map[string][]string{"weekday": {"Must be between 0 and 4."}})
			return
		}
		weekday = models.Weekday(v)
	}

	var restaurants []models.Restaurant
	if err := ac.DB.Where("is_active = ?", true).Order("name").Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load restaurants"))
		return
	}
	var options []models.MotdOption
	ac.DB.Where("weekday = ?", weekday).Find(&options)
	byRestaurant := make(map[uint]string, len(options))
	for _, o := range options {
		byRestaurant[o.RestaurantID] = o.OptionText
	}

	rows := make([]models.MotdRow, 0, len(restaurants))
	for _, r := range restaurants {
		row := models.MotdRow{Restaurant: r}
		if text, ok := byRestaurant[r.ID]; ok {
			row.MotdOption = &text
		}
		rows = append(rows, row)
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"weekday": weekday, "restaurants": rows})
}

// PutMotd sets the option text for (restaurant, weekday); blank text removes it.
func (ac *AdminController) PutMotd(c *gin.Context) {
	var req struct {
		Weekday      *models.Weekday `json:"weekday" binding:"required"`
		RestaurantID uint            `json:"restaurant_id" binding:"required"`
		OptionText   string          `json:"option_text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !req.Weekday.Valid() {
		utils.RespondValidation(c, map[string][]string{"weekday": {"Must be between 0 and 4."}})
		return
	}
	var restaurant models.Restaurant
	if err := ac.DB.First(&restaurant, req.RestaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Restaurant not found"))
		return
	}

	text := strings.TrimSpace(req.OptionText)
	where := ac.DB.Where("restaurant_id = ? AND weekday = ?", req.RestaurantID, *req.Weekday)
	if text == "" {
		if err := where.Delete(&models.MotdOption{}).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to save MOTD option"))
			return
		}
		utils.RespondJSON(c, http.StatusOK, gin.H{"message": "MOTD option cleared"})
		return
	}

	option := models.MotdOption{RestaurantID: req.RestaurantID, Weekday: *req.Weekday}
	if err := where.FirstOrInit(&option).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to save MOTD option"))
		return
	}
	option.OptionText = text
	if err := ac.DB.Save(&option).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to save MOTD option"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "MOTD option saved", "motd_option": option})
}

func (ac *AdminController) GetAvailability(c *gin.Context) {
	availability, err := database.AvailabilityOf(ac.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load availability"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"availability": availability})
}

// PutAvailability replaces a restaurant's whole weekday set.
func (ac *AdminController) PutAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Weekdays []models.Weekday `json:"weekdays" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	for _, wd := range req.Weekdays {
		if !wd.Valid() {
			utils.RespondValidation(c, map[string][]string{"weekdays": {"Each weekday must be between 0 and 4."}})
			return
		}
	}
	var restaurant models.Restaurant
	if err := ac.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Restaurant not found"))
		return
	}

	set := models.NewWeekdaySet(req.Weekdays...)
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		return database.SetAvailability(tx, id, set)
	})
	if err != nil {
		utils.ErrorLogger.Errorf("set availability of restaurant %d: %v", id, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to update availability"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"restaurant_id": id, "weekdays": set})
}

func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required,oneof=pending ordered confirmed sent_to_restaurant completed cancelled"`
	}
	if !bindJSON(c, &req) {
		return
	}
	var order models.Order
	if err := ac.DB.First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Order not found"))
		return
	}
	order.Status = req.Status
	if err := ac.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to update order status"))
		return
	}
	orders := []models.Order{order}
	decorateOrders(ac.DB, orders)
	ac.Feed.PublishOrder(models.EventOrderStatus, orders[0])
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Order status updated", "order": orders[0]})
}

// UsersWithoutOrders lists active users without a live order on the date
// (default tomorrow).
func (ac *AdminController) UsersWithoutOrders(c *gin.Context) {
	param := "order_date"
	if c.Query(param) == "" && c.Query("date") != "" {
		param = "date"
	}
	date := calendar.FormatDate(calendar.Midnight(time.Now()).AddDate(0, 0, 1))
	if c.Query(param) != "" {
		var ok bool
		if date, ok = queryDate(c, param); !ok {
			return
		}
	}

	users, err := usersWithoutOrders(ac.DB, date)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load users"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"date": date, "count": len(users), "users": users})
}

func usersWithoutOrders(db *gorm.DB, date string) ([]models.User, error) {
	ordered := db.Model(&models.Order{}).Select("user_id").
		Where("order_date = ? AND status <> ?", date, models.OrderCancelled)
	var users []models.User
	err := db.Where("is_active = ? AND id NOT IN (?)", true, ordered).Find(&users).Error
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].DisplayName() < users[j].DisplayName() })
	return users, nil
}
