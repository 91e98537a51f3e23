package config

import (
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleet_tracker/internal/models"
)

// OpenDatabase connects through the lib/pq driver and migrates the schema.
func OpenDatabase(cfg DatabaseConfig, log gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        cfg.DSN(),
	}), &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Bus{},
		&models.Route{},
		&models.Schedule{},
		&models.Trip{},
		&models.MaintenanceLog{},
		&models.Notification{},
		&models.DriverLocation{},
		&models.Sequence{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
