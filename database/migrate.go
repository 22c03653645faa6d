// Package database prepares the API stub's schema and demo data.
package database

import (
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
	"gorm.io/gorm"
)

// Models lists every table the stub owns, in dependency order.
var Models = []interface{}{
	&models.User{},
	&models.Restaurant{},
	&models.RestaurantAvailability{},
	&models.Menu{},
	&models.MenuItem{},
	&models.MotdOption{},
	&models.Order{},
	&models.RestaurantOrderEmailLog{},
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return err
	}
	utils.InfoLogger.Debug("AutoMigrate completed.")
	return nil
}
