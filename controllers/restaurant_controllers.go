package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/database"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

type restaurantRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	ContactName string `json:"contact_name" binding:"max=200"`
	PhoneNumber string `json:"phone_number" binding:"max=20"`
	Email       string `json:"email" binding:"omitempty,email"`
	Address     string `json:"address"`
}

// List returns active restaurants; admins may pass is_active=all.
func (rc *RestaurantController) List(c *gin.Context) {
	q := rc.DB.Order("name")
	if !(isAdmin(c) && c.Query("is_active") == "all") {
		q = q.Where("is_active = ?", true)
	}

	restaurants := []models.Restaurant{}
	if err := q.Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load restaurants"))
		return
	}

	availability, err := database.AvailabilityOf(rc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load restaurants"))
		return
	}
	for i := range restaurants {
		restaurants[i].Weekdays = availability[restaurants[i].ID]
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"restaurants": restaurants})
}

func (rc *RestaurantController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	restaurant, ok := rc.find(c, id)
	if !ok {
		return
	}
	availability, err := database.AvailabilityOf(rc.DB, id)
	if err == nil {
		restaurant.Weekdays = availability[id]
	}
	utils.RespondJSON(c, http.StatusOK, restaurant)
}

func (rc *RestaurantController) find(c *gin.Context, id uint) (models.Restaurant, bool) {
	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Restaurant not found"))
		return restaurant, false
	}
	return restaurant, true
}

// Available lists the active restaurants open on the given date, each with
// the menu covering it and the MOTD option for that weekday.
func (rc *RestaurantController) Available(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	entries, err := availableOn(rc.DB, date)
	if err != nil {
		utils.ErrorLogger.Errorf("available restaurants for %s: %v", date, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load restaurants"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"restaurants": entries})
}

func availableOn(db *gorm.DB, date string) ([]models.AvailableRestaurant, error) {
	entries := []models.AvailableRestaurant{}
	weekday, err := calendar.WeekdayOf(date)
	if err != nil {
		// Weekends have no ordering slot.
		return entries, nil
	}

	var restaurants []models.Restaurant
	err = db.Joins("JOIN restaurant_availabilities ra ON ra.restaurant_id = restaurants.id").
		Where("restaurants.is_active = ? AND ra.weekday = ? AND ra.is_available = ?", true, weekday, true).
		Order("restaurants.name").
		Find(&restaurants).Error
	if err != nil {
		return nil, err
	}

	for _, r := range restaurants {
		entry := models.AvailableRestaurant{Restaurant: r}
		menu, err := coveringMenu(db, r.ID, date)
		if err != nil {
			return nil, err
		}
		entry.Menu = menu
		var motd models.MotdOption
		err = db.Where("restaurant_id = ? AND weekday = ?", r.ID, weekday).First(&motd).Error
		if err == nil {
			entry.MotdOption = &motd.OptionText
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// coveringMenu returns the active menu of the restaurant whose window contains
// date, or nil.
func coveringMenu(db *gorm.DB, restaurantID uint, date string) (*models.Menu, error) {
	var menu models.Menu
	err := db.Where("restaurant_id = ? AND is_active = ? AND available_from <= ? AND available_until >= ?",
		restaurantID, true, date, date).
		Order("available_from DESC").
		First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (rc *RestaurantController) Create(c *gin.Context) {
	var req restaurantRequest
	if !bindJSON(c, &req) {
		return
	}
	restaurant := models.Restaurant{
		Name:        strings.TrimSpace(req.Name),
		ContactName: req.ContactName,
		PhoneNumber: req.PhoneNumber,
		Email:       strings.TrimSpace(req.Email),
		Address:     req.Address,
		IsActive:    true,
	}
	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to create restaurant"))
		return
	}
	utils.InfoLogger.Infof("Restaurant created: %s (id=%d)", restaurant.Name, restaurant.ID)
	utils.RespondJSON(c, http.StatusCreated, gin.H{"message": "Restaurant created successfully", "restaurant": restaurant})
}

func (rc *RestaurantController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	restaurant, ok := rc.find(c, id)
	if !ok {
		return
	}
	var req restaurantRequest
	if !bindJSON(c, &req) {
		return
	}
	restaurant.Name = strings.TrimSpace(req.Name)
	restaurant.ContactName = req.ContactName
	restaurant.PhoneNumber = req.PhoneNumber
	restaurant.Email = strings.TrimSpace(req.Email)
	restaurant.Address = req.Address
	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to update restaurant"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Restaurant updated successfully", "restaurant": restaurant})
}

// Deactivate hides the restaurant from ordering; its history stays.
func (rc *RestaurantController) Deactivate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	restaurant, ok := rc.find(c, id)
	if !ok {
		return
	}
	if err := rc.DB.Model(&restaurant).Update("is_active", false).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to deactivate restaurant"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Restaurant deactivated successfully"})
}
