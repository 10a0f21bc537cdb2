package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
)

// NewPostgresDB создает новое подключение к PostgreSQL
func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Настройка пула соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Максимальное число открытых соединений
	sqlDB.SetMaxOpenConns(25)

	// Максимальное число простаивающих соединений
	sqlDB.SetMaxIdleConns(10)

	// Максимальное время жизни соединения
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// MigrateDB приводит схему базы данных к актуальному состоянию через AutoMigrate
func MigrateDB(db *gorm.DB) error {
	log.Println("Запуск миграции схемы базы данных...")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Quiz{},
		&entity.Question{},
		&entity.ReusableQuestion{},
		&entity.Attempt{},
		&entity.Leaderboard{},
		&entity.LeaderboardEntry{},
	)
	if err != nil {
		return fmt.Errorf("ошибка миграции схемы: %w", err)
	}

	log.Println("Миграция схемы базы данных завершена.")
	return nil
}

// GetSQLDB возвращает базовый *sql.DB из *gorm.DB
func GetSQLDB(gormDB *gorm.DB) (*sql.DB, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB, nil
}
