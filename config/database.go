package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/sports-center-backend/models"
)

var DB *gorm.DB

func InitDB(cfg DBConfig) *gorm.DB {
	db, err := OpenDB(cfg)
	if err != nil {
		log.Fatal("Không thể kết nối database:", err)
	}

	if cfg.Driver == "postgres" {
		// Lấy *sql.DB để config connection pooling
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("Không thể lấy sql.DB từ gorm:", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("autoMigrate lỗi: ", err)
	}
	DB = db
	log.Printf("%s connected & migrated successfully!", cfg.Driver)
	return db
}

func OpenDB(cfg DBConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
	}

	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.SQLitePath+"?_foreign_keys=on"), gormCfg)
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode, cfg.TimeZone,
		)
		return gorm.Open(postgres.Open(dsn), gormCfg)
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
}

// Migrate tạo/cập nhật toàn bộ bảng.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Member{},
		&models.Trainer{},
		&models.Receptionist{},
		&models.Class{},
		&models.Enrollment{},
		&models.Progress{},
		&models.Appointment{},
		&models.Payment{},
		&models.Notification{},
		&models.InternalNews{},
		&models.Statistic{},
	)
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}
