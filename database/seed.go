package database

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

// Demo credentials created by Seed.
const (
	DemoAdminEmail    = "admin@example.com"
	DemoAdminPassword = "admin123"
	DemoUserEmail     = "employee@example.com"
	DemoUserPassword  = "employee123"
)

// Seed fills an empty database with two users, two restaurants with weekday
// availability, open-ended menus and a few MOTD options. It does nothing when
// users already exist.
func Seed(db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		adminName := "admin"
		users := []models.User{
			{Username: &adminName, Email: DemoAdminEmail, FirstName: "Ada", LastName: "Admin", Role: models.RoleAdmin, IsActive: true},
			{Email: DemoUserEmail, FirstName: "Eve", LastName: "Employee", Role: models.RoleUser, IsActive: true,
				BirthDate: now.AddDate(-30, 0, 0).Format(calendar.DateLayout)},
		}
		passwords := []string{DemoAdminPassword, DemoUserPassword}
		for i := range users {
			hashed, err := bcrypt.GenerateFromPassword([]byte(passwords[i]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			users[i].PasswordHash = string(hashed)
			if err := tx.Create(&users[i]).Error; err != nil {
				return err
			}
		}

		restaurants := []models.Restaurant{
			{Name: "Pasta Place", Email: "orders@pasta.example.com", ContactName: "Marco", IsActive: true},
			{Name: "Green Bowl", ContactName: "Lina", IsActive: true},
		}
		weekdays := []models.WeekdaySet{
			models.Workdays,
			{models.Monday, models.Wednesday, models.Friday},
		}
		from := calendar.FormatDate(calendar.Midnight(now).AddDate(0, 0, -7))
		for i := range restaurants {
			if err := tx.Create(&restaurants[i]).Error; err != nil {
				return err
			}
			if err := SetAvailability(tx, restaurants[i].ID, weekdays[i]); err != nil {
				return err
			}
			menu := models.Menu{
				RestaurantID:  restaurants[i].ID,
				Name:          restaurants[i].Name + " weekly",
				AvailableFrom: from,
				IsActive:      true,
				MenuText:      "Soup of the day\nSalad\nMain course",
			}
			if err := tx.Create(&menu).Error; err != nil {
				return err
			}
		}

		motd := []models.MotdOption{
			{RestaurantID: restaurants[0].ID, Weekday: models.Monday, OptionText: "Penne arrabbiata"},
			{RestaurantID: restaurants[0].ID, Weekday: models.Friday, OptionText: "Lasagne"},
			{RestaurantID: restaurants[1].ID, Weekday: models.Wednesday, OptionText: "Falafel bowl"},
		}
		if err := tx.Create(&motd).Error; err != nil {
			return err
		}

		utils.InfoLogger.Infof("Seeded demo data: %s / %s", DemoAdminEmail, DemoUserEmail)
		return nil
	})
}

// SetAvailability writes one row per workday for the restaurant.
func SetAvailability(tx *gorm.DB, restaurantID uint, set models.WeekdaySet) error {
	for _, wd := range models.Workdays {
		row := models.RestaurantAvailability{RestaurantID: restaurantID, Weekday: wd}
		err := tx.Where("restaurant_id = ? AND weekday = ?", restaurantID, wd).FirstOrInit(&row).Error
		if err != nil {
			return err
		}
		row.IsAvailable = set.Contains(wd)
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// AvailabilityOf loads the weekday sets of the given restaurants (all when ids is empty).
func AvailabilityOf(db *gorm.DB, ids ...uint) (models.AvailabilityMap, error) {
	var rows []models.RestaurantAvailability
	q := db.Where("is_available = ?", true)
	if len(ids) > 0 {
		q = q.Where("restaurant_id IN ?", ids)
	}
	if err := q.Order("restaurant_id, weekday").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(models.AvailabilityMap)
	for _, r := range rows {
		out[r.RestaurantID] = append(out[r.RestaurantID], r.Weekday)
	}
	return out, nil
}
