package database

import (
	"log"
	"os"
	"time"

	"gamedex/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) {
	var err error

	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established.")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migrated successfully.")
}

// Migrate runs schema migrations for every model in the catalog and
// classification data model. Tests reuse it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.GameUS{},
		&models.GameEU{},
		&models.Game{},
		&models.Price{},
		&models.Sale{},
		&models.Media{},
		&models.TagGroup{},
		&models.Tag{},
		&models.TagVote{},
		&models.ConfirmedTag{},
		&models.AlikeVote{},
		&models.ConfirmedAlike{},
		&models.Recommendation{},
		&models.ConfirmedHighlight{},
		&models.Review{},
		&models.ReviewVote{},
		&models.Wishlist{},
		&models.ListSlot{},
		&models.GameList{},
	)
}
