package db

import (
	"bettracker/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Bookmaker{},
		&models.Sport{},
		&models.League{},
		&models.MarketType{},
		&models.Ticket{},
		&models.AiAnalysis{},
		&models.SystemSetting{},
	)
}
