package database

import (
	"ghgp/internal/models"
	"ghgp/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Company{},
		&models.User{},
		// GHG源目录
		&models.Scope{},
		&models.Category{},
		&models.EmissionSource{},
		&models.SourceHistory{},
		// 排放数据
		&models.EmissionRecord{},
		&models.ImportBatch{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")

	// 种子数据初始化在 main.go 中单独调用，避免循环依赖

	return nil
}
