// internal/storage/db.go
package storage

import (
	"fmt"
	"log"
	"os"

	"github.com/hek316/workin/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func OpenDB() *gorm.DB {
	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "Asia/Seoul"
	}
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		tz,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("failed migrate: ", err)
	}

	return db
}

// Migrate creates or updates the schema. Separate from OpenDB so tests can
// run it against their own DB.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.OfficeLocation{},
		&models.Attendance{},
		&models.ApprovalRequest{},
	)
}
