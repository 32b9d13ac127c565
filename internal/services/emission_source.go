package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ghgp/internal/database"
	"ghgp/internal/models"
	"ghgp/pkg/cache"
	apperrors "ghgp/pkg/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 目录类缓存TTL：类别目录变化极少，排放源列表随公司自建源变化
const (
	categoryCacheTTL = 30 * time.Minute
	sourceCacheTTL   = 10 * time.Minute
)

// 按计量分母的因子合理性上限，超出视为录入错误。
// 顺序即匹配优先级：先匹配更具体的单位关键字。
var factorLimitByUnit = []struct {
	keyword string
	limit   string
}{
	{"kwh", "5"},
	{"tonne", "100000"},
	{"liter", "15"},
	{"litre", "15"},
	{"km", "10"},
	{"m3", "50"},
	{"kg", "100"},
}

// 兜底上限
var factorLimitDefault = decimal.NewFromInt(1000000)

// factorLimitFor 返回单位对应的合理性上限
//
// 形如 kg CO2e/kWh 的单位只取斜杠后的计量分母做匹配，
// 避免分子中的kg把所有常规单位都错配到kg档。
func factorLimitFor(unit string) decimal.Decimal {
	u := strings.ToLower(strings.TrimSpace(unit))
	if idx := strings.LastIndex(u, "/"); idx != -1 {
		u = strings.TrimSpace(u[idx+1:])
	}
	for _, entry := range factorLimitByUnit {
		if strings.Contains(u, entry.keyword) {
			limit, _ := decimal.NewFromString(entry.limit)
			return limit
		}
	}
	return factorLimitDefault
}

type EmissionSourceService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewEmissionSourceService() *EmissionSourceService {
	return &EmissionSourceService{
		db:    database.GetDB(),
		cache: database.GetCache(),
	}
}

func sourceListCacheKey(companyID uint) string {
	return fmt.Sprintf("sources:company:%d", companyID)
}

const categoryCacheKey = "catalog:categories"

// invalidateSourceCaches 失效排放源列表缓存
//
// 系统源变更影响所有公司，统一按前缀清除。
func (s *EmissionSourceService) invalidateSourceCaches() {
	_ = s.cache.DeletePrefix("sources:")
}

// ========== 目录查询 ==========

// GetScopes 获取全部范围定义
func (s *EmissionSourceService) GetScopes() ([]*models.Scope, error) {
	var scopes []*models.Scope
	if err := s.db.Order("scope_number").Find(&scopes).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return scopes, nil
}

// GetCategories 获取启用的类别列表（带缓存，含所属范围）
func (s *EmissionSourceService) GetCategories() ([]*models.Category, error) {
	var cached []*models.Category
	if err := s.cache.Get(categoryCacheKey, &cached); err == nil {
		return cached, nil
	}

	var categories []*models.Category
	err := s.db.Preload("Scope").Where("is_active = ?", true).
		Order("category_code").Find(&categories).Error
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	_ = s.cache.Set(categoryCacheKey, categories, categoryCacheTTL)
	return categories, nil
}

// ListForCompany 获取公司可选的排放源（带缓存）
//
// 包含启用且在界面可见的系统源，以及该公司自建的启用源。
// 其他公司的自建源一律不可见。
func (s *EmissionSourceService) ListForCompany(companyID uint) ([]*models.EmissionSource, error) {
	key := sourceListCacheKey(companyID)

	var cached []*models.EmissionSource
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	var sources []*models.EmissionSource
	err := s.db.Preload("Category").Preload("Category.Scope").
		Where("is_active = ? AND is_visible_in_ui = ?", true, true).
		Where("source_type = ? OR company_id = ?", models.SourceTypeSystem, companyID).
		Order("source_code").Find(&sources).Error
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	_ = s.cache.Set(key, sources, sourceCacheTTL)
	return sources, nil
}

// ListForManagement 管理视角的排放源列表（分页、不走缓存）
//
// companyID为空时返回全部（管理员）；否则返回系统源加该公司自建源。
func (s *EmissionSourceService) ListForManagement(companyID *uint, sourceType, keyword string, categoryID *uint, page, pageSize int) ([]*models.EmissionSource, int64, error) {
	var sources []*models.EmissionSource
	var total int64

	query := s.db.Model(&models.EmissionSource{})

	if companyID != nil {
		query = query.Where("source_type = ? OR company_id = ?", models.SourceTypeSystem, *companyID)
	}
	if sourceType != "" {
		query = query.Where("source_type = ?", sourceType)
	}
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("source_name LIKE ? OR source_code LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewPersistence(err)
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Category").Preload("Category.Scope").
		Order("source_code").Offset(offset).Limit(pageSize).Find(&sources).Error
	if err != nil {
		return nil, 0, apperrors.NewPersistence(err)
	}

	return sources, total, nil
}

// GetByID 根据ID获取排放源
func (s *EmissionSourceService) GetByID(id uint) (*models.EmissionSource, error) {
	var source models.EmissionSource
	err := s.db.Preload("Category").Preload("Category.Scope").First(&source, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("排放源不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}
	return &source, nil
}

// ========== 自建源管理 ==========

// CreateCustomSource 创建公司自建排放源
//
// 源代码按 CUSTOM-{公司ID}-{序号} 自动生成，序号在公司内单调递增。
func (s *EmissionSourceService) CreateCustomSource(companyID, userID, categoryID uint, name string, factor decimal.Decimal, unit, description, reference, region string, referenceYear *int) (*models.EmissionSource, error) {
	if err := ValidateSourceName(name); err != nil {
		return nil, err
	}
	if err := ValidateEmissionFactor(factor, unit); err != nil {
		return nil, err
	}
	if strings.TrimSpace(unit) == "" {
		return nil, apperrors.NewValidation("计量单位不能为空")
	}

	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewValidation("排放类别不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}
	if !category.IsActive {
		return nil, apperrors.NewValidation("排放类别已停用")
	}

	var source *models.EmissionSource
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 同名检查限定在公司自己的自建源范围内
		var count int64
		tx.Model(&models.EmissionSource{}).
			Where("company_id = ? AND source_name = ?", companyID, name).Count(&count)
		if count > 0 {
			return apperrors.NewDuplicate("同名自建排放源已存在")
		}

		code, err := s.nextCustomCode(tx, companyID)
		if err != nil {
			return err
		}

		source = &models.EmissionSource{
			CategoryID:          categoryID,
			SourceCode:          code,
			SourceName:          name,
			EmissionFactor:      factor,
			Unit:                unit,
			Description:         description,
			DataSourceReference: reference,
			SourceType:          models.SourceTypeCustom,
			CompanyID:           &companyID,
			IsActive:            true,
			IsVisibleInUI:       true,
			Version:             1,
			Region:              region,
			ReferenceYear:       referenceYear,
		}
		if err := tx.Create(source).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.NewDuplicate("排放源代码已存在")
			}
			return apperrors.NewPersistence(err)
		}

		// 初始因子也记入历史，保证任何版本都可追溯
		history := &models.SourceHistory{
			SourceID:       source.ID,
			EmissionFactor: factor,
			ChangedBy:      userID,
			ChangedAt:      time.Now(),
			ChangeReason:   "初始创建",
		}
		if err := tx.Create(history).Error; err != nil {
			return apperrors.NewPersistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSourceCaches()
	return source, nil
}

// nextCustomCode 生成公司内下一个自建源代码
func (s *EmissionSourceService) nextCustomCode(tx *gorm.DB, companyID uint) (string, error) {
	prefix := fmt.Sprintf("CUSTOM-%d-", companyID)

	var last models.EmissionSource
	err := tx.Where("source_code LIKE ?", prefix+"%").
		Order("source_code DESC").First(&last).Error

	seq := 1
	if err == nil {
		var n int
		if _, scanErr := fmt.Sscanf(strings.TrimPrefix(last.SourceCode, prefix), "%d", &n); scanErr == nil {
			seq = n + 1
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.NewPersistence(err)
	}

	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// UpdateCustomSource 更新自建排放源
//
// 系统源不允许通过此路径修改。因子发生变化时，把修改前的因子值
// 追加到历史表并递增version；已有排放记录中的快照因子不受影响。
func (s *EmissionSourceService) UpdateCustomSource(id, companyID, userID uint, name string, factor decimal.Decimal, unit, description, reference, changeReason string) (*models.EmissionSource, error) {
	if err := ValidateSourceName(name); err != nil {
		return nil, err
	}
	if err := ValidateEmissionFactor(factor, unit); err != nil {
		return nil, err
	}

	var source models.EmissionSource
	if err := s.db.First(&source, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("排放源不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	if !source.IsCustom() {
		return nil, apperrors.NewPermissionDenied("系统内置排放源不允许修改")
	}
	if source.CompanyID == nil || *source.CompanyID != companyID {
		return nil, apperrors.NewPermissionDenied("只能修改本公司的自建排放源")
	}

	factorChanged := !source.EmissionFactor.Equal(factor)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if factorChanged {
			history := &models.SourceHistory{
				SourceID:       source.ID,
				EmissionFactor: source.EmissionFactor,
				ChangedBy:      userID,
				ChangedAt:      time.Now(),
				ChangeReason:   changeReason,
			}
			if err := tx.Create(history).Error; err != nil {
				return apperrors.NewPersistence(err)
			}
			source.Version++
		}

		source.SourceName = name
		source.EmissionFactor = factor
		source.Unit = unit
		source.Description = description
		source.DataSourceReference = reference

		if err := tx.Save(&source).Error; err != nil {
			return apperrors.NewPersistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSourceCaches()
	return &source, nil
}

// Delete 删除自建排放源
//
// 被排放记录引用的源不允许删除；系统源不允许删除。
func (s *EmissionSourceService) Delete(id, companyID uint) error {
	var source models.EmissionSource
	if err := s.db.First(&source, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("排放源不存在")
		}
		return apperrors.NewPersistence(err)
	}

	if !source.IsCustom() {
		return apperrors.NewPermissionDenied("系统内置排放源不允许删除")
	}
	if source.CompanyID == nil || *source.CompanyID != companyID {
		return apperrors.NewPermissionDenied("只能删除本公司的自建排放源")
	}

	usage, err := s.UsageCount(id)
	if err != nil {
		return err
	}
	if usage > 0 {
		return apperrors.NewValidation("该排放源已被%d条排放记录引用，无法删除", usage)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_id = ?", id).Delete(&models.SourceHistory{}).Error; err != nil {
			return apperrors.NewPersistence(err)
		}
		if err := tx.Delete(&models.EmissionSource{}, id).Error; err != nil {
			return apperrors.NewPersistence(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateSourceCaches()
	return nil
}

// ========== 开关与批量操作（管理员） ==========

// SetActive 启用/停用排放源
func (s *EmissionSourceService) SetActive(id uint, active bool) (*models.EmissionSource, error) {
	return s.setFlag(id, "is_active", active)
}

// SetVisible 设置界面可见性
func (s *EmissionSourceService) SetVisible(id uint, visible bool) (*models.EmissionSource, error) {
	return s.setFlag(id, "is_visible_in_ui", visible)
}

func (s *EmissionSourceService) setFlag(id uint, column string, value bool) (*models.EmissionSource, error) {
	var source models.EmissionSource
	if err := s.db.First(&source, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("排放源不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	if err := s.db.Model(&source).Update(column, value).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	switch column {
	case "is_active":
		source.IsActive = value
	case "is_visible_in_ui":
		source.IsVisibleInUI = value
	}

	s.invalidateSourceCaches()
	return &source, nil
}

// BulkSetFlags 批量设置启用与可见标志
func (s *EmissionSourceService) BulkSetFlags(ids []uint, active, visible *bool) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.NewValidation("排放源ID列表不能为空")
	}

	updates := map[string]interface{}{}
	if active != nil {
		updates["is_active"] = *active
	}
	if visible != nil {
		updates["is_visible_in_ui"] = *visible
	}
	if len(updates) == 0 {
		return 0, apperrors.NewValidation("至少指定一个要更新的标志")
	}

	result := s.db.Model(&models.EmissionSource{}).Where("id IN ?", ids).Updates(updates)
	if result.Error != nil {
		return 0, apperrors.NewPersistence(result.Error)
	}

	s.invalidateSourceCaches()
	return result.RowsAffected, nil
}

// ========== 引用与历史 ==========

// UsageCount 统计排放源被排放记录引用的次数
func (s *EmissionSourceService) UsageCount(id uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.EmissionRecord{}).Where("emission_source_id = ?", id).Count(&count).Error
	if err != nil {
		return 0, apperrors.NewPersistence(err)
	}
	return count, nil
}

// GetHistory 获取排放源的因子变更历史（按时间倒序）
func (s *EmissionSourceService) GetHistory(id uint) ([]*models.SourceHistory, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	var history []*models.SourceHistory
	err := s.db.Where("source_id = ?", id).Order("changed_at DESC").Find(&history).Error
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return history, nil
}

// ========== 验证相关方法 ==========

// ValidateSourceName 验证排放源名称
func ValidateSourceName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 200 {
		return apperrors.NewValidation("排放源名称长度必须在2-200个字符之间")
	}
	return nil
}

// ValidateEmissionFactor 验证排放因子数值范围
//
// 因子允许为0（绿电等零排放场景），不允许为负，
// 并按单位做量级合理性检查。
func ValidateEmissionFactor(factor decimal.Decimal, unit string) error {
	if factor.IsNegative() {
		return apperrors.NewValidation("排放因子不能为负数")
	}

	limit := factorLimitFor(unit)
	if factor.GreaterThan(limit) {
		return apperrors.NewValidation("排放因子超出单位%s的合理范围（上限%s）", unit, limit.String())
	}
	return nil
}
