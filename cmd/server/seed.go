package main

import (
	"fmt"

	"ghgp/internal/database"
	"ghgp/internal/models"
	"ghgp/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 初始化GHG范围
	if err := seedScopes(db); err != nil {
		return fmt.Errorf("初始化GHG范围失败: %v", err)
	}

	// 2. 初始化排放类别
	if err := seedCategories(db); err != nil {
		return fmt.Errorf("初始化排放类别失败: %v", err)
	}

	// 3. 初始化系统排放源
	if err := seedSystemSources(db); err != nil {
		return fmt.Errorf("初始化系统排放源失败: %v", err)
	}

	// 4. 创建默认管理员用户
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// seedScopes 初始化固定的三个GHG范围
func seedScopes(db *gorm.DB) error {
	scopes := []models.Scope{
		{ScopeNumber: 1, ScopeName: "Scope 1 - 直接排放", Description: "企业拥有或控制的排放源产生的直接温室气体排放"},
		{ScopeNumber: 2, ScopeName: "Scope 2 - 外购能源间接排放", Description: "外购电力、蒸汽、供热或制冷产生的间接排放"},
		{ScopeNumber: 3, ScopeName: "Scope 3 - 其他间接排放", Description: "价值链上下游活动产生的其他间接排放"},
	}

	for _, scope := range scopes {
		var count int64
		db.Model(&models.Scope{}).Where("scope_number = ?", scope.ScopeNumber).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&scope).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedCategories 初始化排放类别
func seedCategories(db *gorm.DB) error {
	// 类别代码 -> 所属范围编号
	categories := []struct {
		scopeNumber int
		code        string
		name        string
		description string
	}{
		{1, "S1-STATIONARY", "固定燃烧", "锅炉、炉窑、发电机等固定设备的燃料燃烧"},
		{1, "S1-MOBILE", "移动燃烧", "企业自有车辆和机械设备的燃料燃烧"},
		{1, "S1-FUGITIVE", "逸散排放", "制冷剂泄漏等无组织排放"},
		{2, "S2-ELECTRICITY", "外购电力", "从电网购入电力的间接排放"},
		{2, "S2-HEAT", "外购热力", "外购蒸汽、供热或制冷的间接排放"},
		{3, "S3-TRAVEL", "商务差旅", "员工商务出行产生的排放"},
		{3, "S3-WASTE", "废弃物处理", "运营废弃物处理产生的排放"},
		{3, "S3-COMMUTING", "员工通勤", "员工上下班通勤产生的排放"},
	}

	for _, item := range categories {
		var count int64
		db.Model(&models.Category{}).Where("category_code = ?", item.code).Count(&count)
		if count > 0 {
			continue
		}

		var scope models.Scope
		if err := db.Where("scope_number = ?", item.scopeNumber).First(&scope).Error; err != nil {
			return err
		}

		category := &models.Category{
			ScopeID:      scope.ID,
			CategoryCode: item.code,
			CategoryName: item.name,
			Description:  item.description,
			IsActive:     true,
		}
		if err := db.Create(category).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedSystemSources 初始化系统内置排放源
func seedSystemSources(db *gorm.DB) error {
	sources := []struct {
		categoryCode string
		code         string
		name         string
		factor       string
		unit         string
		reference    string
	}{
		{"S1-STATIONARY", "SYS-NG-001", "天然气燃烧", "2.02", "kg CO2e/m3", "UK Government GHG Conversion Factors 2024"},
		{"S1-STATIONARY", "SYS-DIESEL-001", "柴油燃烧（固定设备）", "2.68", "kg CO2e/liter", "UK Government GHG Conversion Factors 2024"},
		{"S1-MOBILE", "SYS-PETROL-001", "汽油燃烧（车辆）", "2.31", "kg CO2e/liter", "UK Government GHG Conversion Factors 2024"},
		{"S1-MOBILE", "SYS-DIESEL-002", "柴油燃烧（车辆）", "2.68", "kg CO2e/liter", "UK Government GHG Conversion Factors 2024"},
		{"S1-FUGITIVE", "SYS-R410A-001", "制冷剂R410A泄漏", "2088", "kg CO2e/kg", "IPCC AR5 GWP100"},
		{"S2-ELECTRICITY", "SYS-GRID-001", "电网电力", "0.193", "kg CO2e/kWh", "UK Grid Average 2024"},
		{"S2-HEAT", "SYS-STEAM-001", "外购蒸汽", "0.18", "kg CO2e/kWh", "UK Government GHG Conversion Factors 2024"},
		{"S3-TRAVEL", "SYS-FLIGHT-001", "短途航班", "0.246", "kg CO2e/km", "UK Government GHG Conversion Factors 2024"},
		{"S3-TRAVEL", "SYS-RAIL-001", "铁路出行", "0.035", "kg CO2e/km", "UK Government GHG Conversion Factors 2024"},
		{"S3-WASTE", "SYS-LANDFILL-001", "废弃物填埋", "0.467", "kg CO2e/kg", "UK Government GHG Conversion Factors 2024"},
		{"S3-COMMUTING", "SYS-CAR-001", "私家车通勤", "0.17", "kg CO2e/km", "UK Government GHG Conversion Factors 2024"},
	}

	for _, item := range sources {
		var count int64
		db.Model(&models.EmissionSource{}).Where("source_code = ?", item.code).Count(&count)
		if count > 0 {
			continue
		}

		var category models.Category
		if err := db.Where("category_code = ?", item.categoryCode).First(&category).Error; err != nil {
			return err
		}

		factor, err := decimal.NewFromString(item.factor)
		if err != nil {
			return err
		}

		source := &models.EmissionSource{
			CategoryID:          category.ID,
			SourceCode:          item.code,
			SourceName:          item.name,
			EmissionFactor:      factor,
			Unit:                item.unit,
			DataSourceReference: item.reference,
			SourceType:          models.SourceTypeSystem,
			IsActive:            true,
			IsVisibleInUI:       true,
			Version:             1,
		}
		if err := db.Create(source).Error; err != nil {
			return err
		}
	}
	return nil
}

// createDefaultAdmin 创建默认管理员用户
func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("管理员用户已存在，跳过创建")
		return nil
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword("Admin@123"); err != nil {
		return err
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.GetLogger().Warn("已创建默认管理员 admin，请尽快修改初始密码")
	return nil
}
