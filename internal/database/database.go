package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

// InitDB opens the postgres database named by the connection string and
// migrates the four entity tables.
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	err = db.AutoMigrate(
		&models.User{},
		&models.WaterRequest{},
		&models.DriverLocation{},
		&models.Anomaly{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
