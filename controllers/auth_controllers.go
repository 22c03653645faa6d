package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/lunchorder/middlewares"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

// Register creates a regular user account.
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=6"`
		FirstName   string `json:"first_name" binding:"required,max=100"`
		LastName    string `json:"last_name" binding:"required,max=100"`
		PhoneNumber string `json:"phone_number" binding:"omitempty,max=20"`
		BirthDate   string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
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
	if username := strings.TrimSpace(req.Username); username != "" {
		user.Username = &username
	}
	if err := ac.checkUnique(user.Email, user.Username, 0); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	user.PasswordHash = hashed

	if err := ac.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Registration failed"))
		return
	}
	user.FullName = user.FirstName + " " + user.LastName

	utils.InfoLogger.Infof("New user registered: %s", user.Email)
	utils.RespondJSON(c, http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

func (ac *AuthController) checkUnique(email string, username *string, exceptID uint) error {
	var count int64
	ac.DB.Model(&models.User{}).Where("email = ? AND id <> ?", email, exceptID).Count(&count)
	if count > 0 {
		return errors.New("Email already registered")
	}
	if username != nil {
		ac.DB.Model(&models.User{}).Where("username = ? AND id <> ?", *username, exceptID).Count(&count)
		if count > 0 {
			return errors.New("Username already taken")
		}
	}
	return nil
}

// Login accepts an email or a username as identifier and returns a JWT.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
		Email      string `json:"email"`
		Username   string `json:"username"`
		Password   string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" {
		identifier = strings.TrimSpace(req.Username)
	}
	if identifier == "" {
		utils.RespondValidation(c, map[string][]string{"identifier": {"Missing data for required field."}})
		return
	}

	var user models.User
	err := ac.DB.Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid credentials"))
		return
	}
	if !user.IsActive {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("User account is inactive"))
		return
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	exp, _ := utils.TokenExpiry(token)

	utils.InfoLogger.Infof("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"message":      "Login successful",
		"user":         user,
		"access_token": token,
		"expires_at":   exp,
	})
}

// Logout revokes the presented token.
func (ac *AuthController) Logout(c *gin.Context) {
	if token, ok := c.Get(middlewares.ContextToken); ok {
		utils.BlacklistToken(token.(string))
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Logout successful"})
}

func (ac *AuthController) Me(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, middlewares.CurrentUser(c))
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req struct {
		FirstName   *string `json:"first_name" binding:"omitempty,min=1,max=100"`
		LastName    *string `json:"last_name" binding:"omitempty,min=1,max=100"`
		PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
		BirthDate   *string `json:"birth_date"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user := middlewares.CurrentUser(c)
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.BirthDate != nil {
		if *req.BirthDate != "" && !validDate(*req.BirthDate) {
			utils.RespondValidation(c, map[string][]string{"birth_date": {"Not a valid date."}})
			return
		}
		user.BirthDate = *req.BirthDate
	}

	if err := ac.DB.Save(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Update failed"))
		return
	}
	user.FullName = user.FirstName + " " + user.LastName
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user := middlewares.CurrentUser(c)
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Current password is incorrect"))
		return
	}
	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := ac.DB.Model(&user).Update("password_hash", hashed).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Password change failed"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Password changed successfully"})
}
