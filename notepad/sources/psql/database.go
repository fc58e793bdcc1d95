package psql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"notepad/notepad/config"
	"notepad/notepad/sources/psql/models"
	"notepad/notepad/utils/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func DSN(cfg config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Bounded pool; callers beyond the limit wait for a free connection.
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	var currentDB string
	_ = db.WithContext(ctx).Raw("SELECT current_database()").Scan(&currentDB).Error
	logging.AppLogger.Info("connected to database",
		zap.String("host", cfg.DBHost),
		zap.String("database", currentDB),
		zap.Int("max_open_conns", cfg.DBMaxOpenConns),
	)

	database := &Database{DB: db}
	if err := database.Migrate(ctx); err != nil {
		return nil, err
	}
	return database, nil
}

// Migrate creates or updates the pages table.
func (db *Database) Migrate(ctx context.Context) error {
	if err := db.DB.WithContext(ctx).AutoMigrate(&models.Page{}); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

func (db *Database) Ping(ctx context.Context) error {
	return db.DB.WithContext(ctx).Exec("SELECT 1").Error
}

func (db *Database) PoolStats() sql.DBStats {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

func (db *Database) PageCount(ctx context.Context) (int64, error) {
	var n int64
	err := db.DB.WithContext(ctx).Model(&models.Page{}).Count(&n).Error
	return n, err
}

// StoreSize is the on-disk size of the pages table including indexes.
func (db *Database) StoreSize(ctx context.Context) (int64, error) {
	var size int64
	err := db.DB.WithContext(ctx).
		Raw("SELECT pg_total_relation_size(?)", models.Page{}.TableName()).
		Scan(&size).Error
	return size, err
}

func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
