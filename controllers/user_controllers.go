package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// List returns users newest first, paginated and optionally filtered by role
// and is_active.
func (uc *UserController) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)
	if perPage > 100 {
		perPage = 100
	}

	q := uc.DB.Model(&models.User{})
	if role := c.Query("role"); role == string(models.RoleAdmin) || role == string(models.RoleUser) {
		q = q.Where("role = ?", role)
	}
	if active := c.Query("is_active"); active != "" {
		q = q.Where("is_active = ?", strings.EqualFold(active, "true"))
	}

	result := models.UserPage{Page: page, PerPage: perPage, Users: []models.User{}}
	if err := q.Count(&result.Total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load users"))
		return
	}
	err := q.Order("created_at DESC, id DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&result.Users).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to load users"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, result)
}

func (uc *UserController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("User not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, user)
}

func (uc *UserController) Create(c *gin.Context) {
	var req struct {
		Username    string      `json:"username"`
		Email       string      `json:"email" binding:"required,email"`
		Password    string      `json:"password" binding:"required,min=6"`
		FirstName   string      `json:"first_name" binding:"required,max=100"`
		LastName    string      `json:"last_name" binding:"required,max=100"`
		PhoneNumber string      `json:"phone_number" binding:"max=20"`
		BirthDate   string      `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
		Role        models.Role `json:"role" binding:"omitempty,oneof=user admin"`
		IsActive    *bool       `json:"is_active"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user := models.User{
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   req.BirthDate,
		Role:        models.RoleUser,
		IsActive:    true,
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if username := strings.TrimSpace(req.Username); username != "" {
		user.Username = &username
	}

	auth := AuthController{DB: uc.DB}
	if err := auth.checkUnique(user.Email, user.Username, 0); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	user.PasswordHash = hashed
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to create user"))
		return
	}
	user.FullName = user.FirstName + " " + user.LastName

	utils.InfoLogger.Infof("User %s created by admin %d", user.Email, currentUserID(c))
	utils.RespondJSON(c, http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

// Update applies the non-empty fields of the payload.
func (uc *UserController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("User not found"))
		return
	}

	var req struct {
		Username    string      `json:"username"`
		Email       string      `json:"email" binding:"omitempty,email"`
		Password    string      `json:"password" binding:"omitempty,min=6"`
		FirstName   string      `json:"first_name" binding:"max=100"`
		LastName    string      `json:"last_name" binding:"max=100"`
		PhoneNumber string      `json:"phone_number" binding:"max=20"`
		BirthDate   string      `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
		Role        models.Role `json:"role" binding:"omitempty,oneof=user admin"`
		IsActive    *bool       `json:"is_active"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if username := strings.TrimSpace(req.Username); username != "" {
		user.Username = &username
	}
	auth := AuthController{DB: uc.DB}
	if err := auth.checkUnique(user.Email, user.Username, user.ID); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.BirthDate != "" {
		user.BirthDate = req.BirthDate
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.IsActive != nil {
		if !*req.IsActive && user.ID == currentUserID(c) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("Cannot deactivate your own account"))
			return
		}
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		hashed, err := hashPassword(req.Password)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		user.PasswordHash = hashed
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to update user"))
		return
	}
	user.FullName = user.FirstName + " " + user.LastName
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

// Deactivate disables the account; admins cannot disable themselves.
func (uc *UserController) Deactivate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id == currentUserID(c) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Cannot deactivate your own account"))
		return
	}
	res := uc.DB.Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Failed to deactivate user"))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("User not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "User deactivated successfully"})
}
