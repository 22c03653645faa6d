package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

const (
	uploadURLPrefix = "/api/uploads/"
	maxMenuFileSize = 10 << 20
)

var allowedMenuFiles = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type MenuController struct {
	DB        *gorm.DB
	UploadDir string
}

func NewMenuController(db *gorm.DB, uploadDir string) *MenuController {
	return &MenuController{DB: db, UploadDir: uploadDir}
}

type menuCreateRequest struct {
	RestaurantID   uint           `json:"restaurant_id" form:"restaurant_id" binding:"required"`
	Name           string         `json:"name" form:"name" binding:"required,max=200"`
	Description    string         `json:"description" form:"description"`
	AvailableFrom  string         `json:"available_from" form:"available_from" binding:"required,datetime=2006-01-02"`
	AvailableUntil models.EndDate `json:"available_until" form:"available_until"`
	MenuText       *string        `json:"menu_text" form:"menu_text"`
}

// Empty fields are left unchanged; a null or sentinel end date opens the window.
type menuUpdateRequest struct {
	RestaurantID   uint            `json:"restaurant_id" form:"restaurant_id"`
	Name           string          `json:"name" form:"name" binding:"max=200"`
	Description    *string         `json:"description" form:"description"`
	AvailableFrom  string          `json:"available_from" form:"available_from" binding:"omitempty,datetime=2006-01-02"`
	AvailableUntil *models.EndDate `json:"available_until" form:"available_until"`
	MenuText       *string         `json:"menu_text" form:"menu_text"`
	ClearFile      bool            `json:"clear_file" form:"clear_file"`
}

// List returns active menus, optionally filtered by restaurant and by a date
// range their window must intersect.
func (mc *MenuController) List(c *gin.Context) {
	q := mc.DB.Where("is_active = ?", true)
	if rid := queryInt(c, "restaurant_id", 0); rid > 0 {
		q = q.Where("restaurant_id = ?", rid)
	}
	if from := c.Query("date_from"); from != "" {
		if !validDate(from) {
			utils.RespondValidation(c, map[string][]string{"date_from": {"Not a valid date."}})
			return
		}
		q = q.Where("available_until >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		if !validDate(to) {
			utils.RespondValidation(c, map[string][]string{"date_to": {"Not a valid date."}})
			return
		}
		q = q.Where("available_from <= ?", to)
	}

	menus := []models.Menu{}
	if err := q.Order("available_from").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load menus"))
		return
	}
	mc.attachRestaurantNames(menus)
	utils.RespondJSON(c, http.StatusOK, gin.H{"menus": menus})
}

// Available returns the active menus of active restaurants covering date.
func (mc *MenuController) Available(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	menus := []models.Menu{}
	err := mc.DB.Joins("JOIN restaurants ON restaurants.id = menus.restaurant_id").
		Where("menus.is_active = ? AND restaurants.is_active = ?", true, true).
		Where("menus.available_from <= ? AND menus.available_until >= ?", date, date).
		Order("menus.available_from").
		Find(&menus).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load menus"))
		return
	}
	mc.attachRestaurantNames(menus)
	utils.RespondJSON(c, http.StatusOK, gin.H{"menus": menus, "date": date})
}

func (mc *MenuController) attachRestaurantNames(menus []models.Menu) {
	if len(menus) == 0 {
		return
	}
	names := restaurantNames(mc.DB)
	for i := range menus {
		menus[i].RestaurantName = names[menus[i].RestaurantID]
	}
}

func restaurantNames(db *gorm.DB) map[uint]string {
	var restaurants []models.Restaurant
	db.Select("id", "name").Find(&restaurants)
	names := make(map[uint]string, len(restaurants))
	for _, r := range restaurants {
		names[r.ID] = r.Name
	}
	return names
}

// Get returns the menu with its items; inactive menus are hidden from non-admins.
func (mc *MenuController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var menu models.Menu
	err := mc.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order, name")
	}).First(&menu, id).Error
	if err != nil || (!menu.IsActive && !isAdmin(c)) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Menu not found"))
		return
	}
	menu.RestaurantName = restaurantNames(mc.DB)[menu.RestaurantID]
	utils.RespondJSON(c, http.StatusOK, menu)
}

func (mc *MenuController) Create(c *gin.Context) {
	var req menuCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	mc.create(c, req, nil)
}

// CreateWithContent accepts the menu fields as a multipart form plus an
// optional menu_file (PDF or image).
func (mc *MenuController) CreateWithContent(c *gin.Context) {
	var req menuCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondValidation(c, validationMessages(err))
		return
	}
	file, err := c.FormFile("menu_file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("error processing form"))
		return
	}
	mc.create(c, req, file)
}

func (mc *MenuController) create(c *gin.Context, req menuCreateRequest, file *multipart.FileHeader) {
	if !req.AvailableUntil.IsOpen() && !validDate(string(req.AvailableUntil)) {
		utils.RespondValidation(c, map[string][]string{"available_until": {"Not a valid date."}})
		return
	}
	var restaurant models.Restaurant
	if err := mc.DB.First(&restaurant, req.RestaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Restaurant not found"))
		return
	}
	if err := mc.validateWindow(req.RestaurantID, req.AvailableFrom, req.AvailableUntil, 0, true); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu := models.Menu{
		RestaurantID:   req.RestaurantID,
		Name:           strings.TrimSpace(req.Name),
		Description:    strings.TrimSpace(req.Description),
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
		IsActive:       true,
	}
	if req.MenuText != nil {
		menu.MenuText = *req.MenuText
	}
	if file != nil {
		if err := mc.attachFile(c, &menu, file); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	if err := mc.DB.Create(&menu).Error; err != nil {
		mc.removeFile(menu.MenuFileURL)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to create menu"))
		return
	}
	menu.RestaurantName = restaurant.Name
	utils.InfoLogger.Infof("Menu created: %s for restaurant %d (%s to %s)", menu.Name, menu.RestaurantID, menu.AvailableFrom, menu.AvailableUntil)
	utils.RespondJSON(c, http.StatusCreated, gin.H{"message": "Menu created successfully", "menu": menu})
}

func (mc *MenuController) Update(c *gin.Context) {
	var req menuUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	mc.update(c, req, nil)
}

// UpdateContent is Update as a multipart form; it may replace or clear the file.
func (mc *MenuController) UpdateContent(c *gin.Context) {
	var req menuUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondValidation(c, validationMessages(err))
		return
	}
	file, err := c.FormFile("menu_file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("error processing form"))
		return
	}
	mc.update(c, req, file)
}

func (mc *MenuController) update(c *gin.Context, req menuUpdateRequest, file *multipart.FileHeader) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Menu not found"))
		return
	}

	prevFrom := menu.AvailableFrom
	if req.RestaurantID != 0 {
		menu.RestaurantID = req.RestaurantID
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		menu.Name = name
	}
	if req.Description != nil {
		menu.Description = strings.TrimSpace(*req.Description)
	}
	if req.AvailableFrom != "" {
		menu.AvailableFrom = req.AvailableFrom
	}
	if req.AvailableUntil != nil {
		if !req.AvailableUntil.IsOpen() && !validDate(string(*req.AvailableUntil)) {
			utils.RespondValidation(c, map[string][]string{"available_until": {"Not a valid date."}})
			return
		}
		menu.AvailableUntil = *req.AvailableUntil
	}
	if req.MenuText != nil {
		menu.MenuText = *req.MenuText
	}

	if err := mc.validateWindow(menu.RestaurantID, menu.AvailableFrom, menu.AvailableUntil, menu.ID, menu.AvailableFrom != prevFrom); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	oldFile := menu.MenuFileURL
	if req.ClearFile || file != nil {
		menu.MenuFileURL, menu.MenuFileName, menu.MenuFileMime = "", "", ""
	}
	if file != nil {
		if err := mc.attachFile(c, &menu, file); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	if err := mc.DB.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to update menu"))
		return
	}
	if oldFile != "" && oldFile != menu.MenuFileURL {
		mc.removeFile(oldFile)
	}
	menu.RestaurantName = restaurantNames(mc.DB)[menu.RestaurantID]
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Menu updated successfully", "menu": menu})
}

// validateWindow rejects inverted windows, windows starting in the past and
// windows overlapping another active menu of the same restaurant.
func (mc *MenuController) validateWindow(restaurantID uint, from string, until models.EndDate, exceptID uint, checkPast bool) error {
	if !until.IsOpen() && from > string(until) {
		return errors.New("Start date must be before end date")
	}
	if checkPast && from < today() {
		return errors.New("Menu availability cannot start in the past")
	}

	var overlapping models.Menu
	err := mc.DB.Where("restaurant_id = ? AND is_active = ? AND id <> ?", restaurantID, true, exceptID).
		Where("available_from <= ? AND available_until >= ?", endBound(until), from).
		First(&overlapping).Error
	if err == nil {
		return fmt.Errorf("Menu dates overlap with existing menu: %s", overlapping.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (mc *MenuController) attachFile(c *gin.Context, menu *models.Menu, file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	mime, ok := allowedMenuFiles[ext]
	if !ok {
		return errors.New("Menu file must be a PDF or an image")
	}
	if file.Size > maxMenuFileSize {
		return errors.New("Menu file is too large")
	}
	if err := os.MkdirAll(mc.UploadDir, 0o755); err != nil {
		utils.ErrorLogger.Errorf("create upload dir: %v", err)
		return errors.New("error saving menu file")
	}

	name := fmt.Sprintf("menu_%d%s", time.Now().UnixNano(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(mc.UploadDir, name)); err != nil {
		utils.ErrorLogger.Errorf("save menu file: %v", err)
		return errors.New("error saving menu file")
	}
	menu.MenuFileURL = uploadURLPrefix + name
	menu.MenuFileName = filepath.Base(file.Filename)
	menu.MenuFileMime = mime
	return nil
}

func (mc *MenuController) removeFile(url string) {
	if !strings.HasPrefix(url, uploadURLPrefix) {
		return
	}
	if err := os.Remove(filepath.Join(mc.UploadDir, filepath.Base(url))); err != nil && !os.IsNotExist(err) {
		utils.ErrorLogger.Warnf("remove menu file %s: %v", url, err)
	}
}

// Delete deactivates the menu.
func (mc *MenuController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := mc.DB.Model(&models.Menu{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to delete menu"))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("Menu not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Menu deleted successfully"})
}

// ServeUpload serves a stored menu file. Only files referenced by a menu are served.
func (mc *MenuController) ServeUpload(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == "/" || strings.HasPrefix(name, "..") {
		c.Status(http.StatusNotFound)
		return
	}
	var count int64
	mc.DB.Model(&models.Menu{}).Where("menu_file_url = ?", uploadURLPrefix+name).Count(&count)
	if count == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.File(filepath.Join(mc.UploadDir, name))
}
