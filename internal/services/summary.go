package services

import (
	"fmt"
	"time"

	"ghgp/internal/database"
	"ghgp/internal/models"
	"ghgp/pkg/cache"
	apperrors "ghgp/pkg/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 汇总缓存TTL：兜底过期，常规失效由排放记录写路径显式触发
const summaryCacheTTL = 15 * time.Minute

// kg换算为tonnes的除数
var kgPerTonne = decimal.NewFromInt(1000)

type SummaryService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewSummaryService() *SummaryService {
	return &SummaryService{
		db:    database.GetDB(),
		cache: database.GetCache(),
	}
}

// EmissionSummary 公司某报告期的排放汇总，单位tonnes CO2e
type EmissionSummary struct {
	CompanyID       uint            `json:"company_id"`
	ReportingPeriod string          `json:"reporting_period"`
	Scope1          decimal.Decimal `json:"scope_1"`
	Scope2          decimal.Decimal `json:"scope_2"`
	Scope3          decimal.Decimal `json:"scope_3"`
	Total           decimal.Decimal `json:"total"`
}

// SourceBreakdownItem 按排放源的分项汇总
type SourceBreakdownItem struct {
	EmissionSourceID uint            `json:"emission_source_id"`
	SourceCode       string          `json:"source_code"`
	SourceName       string          `json:"source_name"`
	ScopeNumber      int             `json:"scope_number"`
	RecordCount      int64           `json:"record_count"`
	TotalTonnes      decimal.Decimal `json:"total_tonnes"`
}

func summaryCacheKey(companyID uint, period string) string {
	return fmt.Sprintf("summary:company:%d:%s", companyID, period)
}

func breakdownCacheKey(companyID uint, period string) string {
	return fmt.Sprintf("summary:company:%d:%s:breakdown", companyID, period)
}

// scopeSumRow 分scope求和的扫描结构
type scopeSumRow struct {
	ScopeNumber int             `gorm:"column:scope_number"`
	TotalKg     decimal.Decimal `gorm:"column:total_kg"`
}

// GetSummary 获取公司某报告期的排放汇总（带缓存）
//
// 只统计verified状态的记录；未审核和已驳回的数据不进入披露口径。
// 记录以kg存储，对外汇总统一换算为tonnes。
func (s *SummaryService) GetSummary(companyID uint, period string) (*EmissionSummary, error) {
	if !IsValidReportingPeriod(period) {
		return nil, apperrors.NewValidation("报告期%s不在有效范围内", period)
	}

	key := summaryCacheKey(companyID, period)
	var cached EmissionSummary
	if err := s.cache.Get(key, &cached); err == nil {
		return &cached, nil
	}

	summary, err := s.computeSummary(companyID, period)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(key, summary, summaryCacheTTL)
	return summary, nil
}

// computeSummary 直接从数据库计算汇总（调度器预热也走这里）
func (s *SummaryService) computeSummary(companyID uint, period string) (*EmissionSummary, error) {
	var rows []scopeSumRow
	err := s.db.Model(&models.EmissionRecord{}).
		Select("ghg_scopes.scope_number AS scope_number, COALESCE(SUM(emissions_data.co2_equivalent), 0) AS total_kg").
		Joins("JOIN ghg_emission_sources ON ghg_emission_sources.id = emissions_data.emission_source_id").
		Joins("JOIN ghg_categories ON ghg_categories.id = ghg_emission_sources.category_id").
		Joins("JOIN ghg_scopes ON ghg_scopes.id = ghg_categories.scope_id").
		Where("emissions_data.company_id = ?", companyID).
		Where("emissions_data.reporting_period = ?", period).
		Where("emissions_data.verification_status = ?", models.VerificationVerified).
		Group("ghg_scopes.scope_number").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	summary := &EmissionSummary{
		CompanyID:       companyID,
		ReportingPeriod: period,
		Scope1:          decimal.Zero,
		Scope2:          decimal.Zero,
		Scope3:          decimal.Zero,
		Total:           decimal.Zero,
	}

	for _, row := range rows {
		tonnes := row.TotalKg.Div(kgPerTonne)
		switch row.ScopeNumber {
		case 1:
			summary.Scope1 = tonnes
		case 2:
			summary.Scope2 = tonnes
		case 3:
			summary.Scope3 = tonnes
		}
	}
	summary.Total = summary.Scope1.Add(summary.Scope2).Add(summary.Scope3)

	return summary, nil
}

// GetSourceBreakdown 按排放源的分项汇总（带缓存，只含verified记录）
func (s *SummaryService) GetSourceBreakdown(companyID uint, period string) ([]SourceBreakdownItem, error) {
	if !IsValidReportingPeriod(period) {
		return nil, apperrors.NewValidation("报告期%s不在有效范围内", period)
	}

	key := breakdownCacheKey(companyID, period)
	var cached []SourceBreakdownItem
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	type breakdownRow struct {
		EmissionSourceID uint            `gorm:"column:emission_source_id"`
		SourceCode       string          `gorm:"column:source_code"`
		SourceName       string          `gorm:"column:source_name"`
		ScopeNumber      int             `gorm:"column:scope_number"`
		RecordCount      int64           `gorm:"column:record_count"`
		TotalKg          decimal.Decimal `gorm:"column:total_kg"`
	}

	var rows []breakdownRow
	err := s.db.Model(&models.EmissionRecord{}).
		Select(`emissions_data.emission_source_id,
			ghg_emission_sources.source_code,
			ghg_emission_sources.source_name,
			ghg_scopes.scope_number,
			COUNT(emissions_data.id) AS record_count,
			COALESCE(SUM(emissions_data.co2_equivalent), 0) AS total_kg`).
		Joins("JOIN ghg_emission_sources ON ghg_emission_sources.id = emissions_data.emission_source_id").
		Joins("JOIN ghg_categories ON ghg_categories.id = ghg_emission_sources.category_id").
		Joins("JOIN ghg_scopes ON ghg_scopes.id = ghg_categories.scope_id").
		Where("emissions_data.company_id = ?", companyID).
		Where("emissions_data.reporting_period = ?", period).
		Where("emissions_data.verification_status = ?", models.VerificationVerified).
		Group("emissions_data.emission_source_id, ghg_emission_sources.source_code, ghg_emission_sources.source_name, ghg_scopes.scope_number").
		Order("total_kg DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	items := make([]SourceBreakdownItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, SourceBreakdownItem{
			EmissionSourceID: row.EmissionSourceID,
			SourceCode:       row.SourceCode,
			SourceName:       row.SourceName,
			ScopeNumber:      row.ScopeNumber,
			RecordCount:      row.RecordCount,
			TotalTonnes:      row.TotalKg.Div(kgPerTonne),
		})
	}

	_ = s.cache.Set(key, items, summaryCacheTTL)
	return items, nil
}

// WarmCompanySummaries 预热指定公司当前报告期的汇总缓存
func (s *SummaryService) WarmCompanySummaries(companyID uint, periods []string) error {
	for _, period := range periods {
		summary, err := s.computeSummary(companyID, period)
		if err != nil {
			return err
		}
		if err := s.cache.Set(summaryCacheKey(companyID, period), summary, summaryCacheTTL); err != nil {
			return err
		}
	}
	return nil
}
