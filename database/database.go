package database

import (
	"classboard/config"
	"classboard/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes the database connection, runs the versioned
// migrations and resolves the schema capabilities.
func ConnectDb() {
	db, err := openConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)   // Maximum open connections
	sqlDB.SetMaxIdleConns(5)    // Maximum idle connections
	sqlDB.SetConnMaxLifetime(0) // No timeout

	// Run database migrations
	runMigrations(db)

	// Defensive structural check on top of the migrations; fills Capabilities.
	if err := EnsureSchema(db); err != nil {
		log.Fatalf("Schema check failed: %v", err)
	}

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// openConnection picks the gorm driver from DB_DRIVER (postgres by default).
func openConnection() (*gorm.DB, error) {
	switch config.AppConfig.DBDriver {
	case "sqlite":
		return gorm.Open(sqlite.Open(config.AppConfig.DBName), &gorm.Config{TranslateError: true})
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			config.AppConfig.DBName,
		)
		return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	default:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			config.AppConfig.DBName,
			os.Getenv("DB_PORT"),
		)
		return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	}
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Classroom{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.Submission{},
		&models.ActivityLog{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}
