package services

import (
	"errors"
	"fmt"
	"time"

	"ghgp/internal/database"
	"ghgp/internal/models"
	"ghgp/pkg/cache"
	apperrors "ghgp/pkg/errors"

	"gorm.io/gorm"
)

// 公司信息缓存TTL
const companyCacheTTL = 5 * time.Minute

type CompanyService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// CompanyStats 公司统计信息
type CompanyStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Verified int64 `json:"verified"`
	Rejected int64 `json:"rejected"`
}

func NewCompanyService() *CompanyService {
	return &CompanyService{
		db:    database.GetDB(),
		cache: database.GetCache(),
	}
}

func companyCacheKey(id uint) string {
	return fmt.Sprintf("company:%d", id)
}

// invalidate 失效公司相关缓存，必须在写操作返回前调用
func (s *CompanyService) invalidate(id uint) {
	_ = s.cache.Delete(companyCacheKey(id))
}

// ========== 基础CRUD方法 ==========

// Create 创建公司（管理员直接创建，默认已认证）
func (s *CompanyService) Create(name, code, industry string, address, contactEmail *string) (*models.Company, error) {
	if err := ValidateCompanyName(name); err != nil {
		return nil, err
	}
	if err := ValidateCompanyCode(code); err != nil {
		return nil, err
	}

	// 检查名称与代码是否重复
	var count int64
	s.db.Model(&models.Company{}).Where("company_name = ? OR company_code = ?", name, code).Count(&count)
	if count > 0 {
		return nil, apperrors.NewDuplicate("公司名称或公司代码已存在")
	}

	company := &models.Company{
		CompanyName:        name,
		CompanyCode:        code,
		IndustrySector:     industry,
		Address:            address,
		ContactEmail:       contactEmail,
		VerificationStatus: models.CompanyStatusVerified,
	}

	if err := s.db.Create(company).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewDuplicate("公司名称或公司代码已存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	return company, nil
}

// GetByID 根据ID获取公司（带TTL缓存）
func (s *CompanyService) GetByID(id uint) (*models.Company, error) {
	var cached models.Company
	if err := s.cache.Get(companyCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	var company models.Company
	err := s.db.First(&company, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("公司不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	_ = s.cache.Set(companyCacheKey(id), &company, companyCacheTTL)
	return &company, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *CompanyService) GetWithFiltersAndPage(status models.CompanyStatus, keyword string, page, pageSize int) ([]*models.Company, int64, error) {
	var companies []*models.Company
	var total int64

	query := s.db.Model(&models.Company{})

	if status != "" {
		query = query.Where("verification_status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("company_name LIKE ? OR company_code LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewPersistence(err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&companies).Error
	if err != nil {
		return nil, 0, apperrors.NewPersistence(err)
	}

	// 填充用户数量
	for _, company := range companies {
		var userCount int64
		s.db.Model(&models.User{}).Where("company_id = ?", company.ID).Count(&userCount)
		company.UserCount = int(userCount)
	}

	return companies, total, nil
}

// GetVerified 获取全部已认证公司（注册时选择用）
func (s *CompanyService) GetVerified() ([]*models.Company, error) {
	var companies []*models.Company
	err := s.db.Where("verification_status = ?", models.CompanyStatusVerified).
		Order("company_name").Find(&companies).Error
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return companies, nil
}

// Update 更新公司基础信息
func (s *CompanyService) Update(id uint, name, industry string, address, contactEmail *string) (*models.Company, error) {
	if err := ValidateCompanyName(name); err != nil {
		return nil, err
	}

	var company models.Company
	if err := s.db.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("公司不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	// 如果名称变更，检查是否重复
	if company.CompanyName != name {
		var count int64
		s.db.Model(&models.Company{}).Where("company_name = ? AND id != ?", name, id).Count(&count)
		if count > 0 {
			return nil, apperrors.NewDuplicate("公司名称已存在")
		}
	}

	company.CompanyName = name
	company.IndustrySector = industry
	company.Address = address
	company.ContactEmail = contactEmail

	if err := s.db.Save(&company).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	s.invalidate(id)
	return &company, nil
}

// Delete 删除公司
//
// 存在关联用户或排放记录时拒绝删除，引用完整性在应用层先行校验。
func (s *CompanyService) Delete(id uint) error {
	var company models.Company
	if err := s.db.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("公司不存在")
		}
		return apperrors.NewPersistence(err)
	}

	var userCount int64
	s.db.Model(&models.User{}).Where("company_id = ?", id).Count(&userCount)
	if userCount > 0 {
		return apperrors.NewValidation("公司下仍有%d个用户，无法删除", userCount)
	}

	var recordCount int64
	s.db.Model(&models.EmissionRecord{}).Where("company_id = ?", id).Count(&recordCount)
	if recordCount > 0 {
		return apperrors.NewValidation("公司下仍有%d条排放记录，无法删除", recordCount)
	}

	if err := s.db.Delete(&models.Company{}, id).Error; err != nil {
		return apperrors.NewPersistence(err)
	}

	s.invalidate(id)
	return nil
}

// ========== 认证流转 ==========

// Verify 通过公司认证
func (s *CompanyService) Verify(id uint) (*models.Company, error) {
	return s.setVerification(id, models.CompanyStatusVerified)
}

// Reject 驳回公司认证
func (s *CompanyService) Reject(id uint) (*models.Company, error) {
	return s.setVerification(id, models.CompanyStatusRejected)
}

func (s *CompanyService) setVerification(id uint, status models.CompanyStatus) (*models.Company, error) {
	var company models.Company
	if err := s.db.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("公司不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	company.VerificationStatus = status
	if err := s.db.Save(&company).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	s.invalidate(id)
	return &company, nil
}

// ========== 统计相关方法 ==========

// GetStats 获取公司统计
func (s *CompanyService) GetStats() (*CompanyStats, error) {
	stats := &CompanyStats{}

	s.db.Model(&models.Company{}).Count(&stats.Total)
	s.db.Model(&models.Company{}).Where("verification_status = ?", models.CompanyStatusPending).Count(&stats.Pending)
	s.db.Model(&models.Company{}).Where("verification_status = ?", models.CompanyStatusVerified).Count(&stats.Verified)
	s.db.Model(&models.Company{}).Where("verification_status = ?", models.CompanyStatusRejected).Count(&stats.Rejected)

	return stats, nil
}

// ========== 验证相关方法 ==========

// ValidateCompanyName 验证公司名称
func ValidateCompanyName(name string) error {
	if len(name) < 2 || len(name) > 200 {
		return apperrors.NewValidation("公司名称长度必须在2-200个字符之间")
	}
	return nil
}

// ValidateCompanyCode 验证公司代码：3-20位字母、数字、中划线或下划线
func ValidateCompanyCode(code string) error {
	if len(code) < 3 || len(code) > 20 {
		return apperrors.NewValidation("公司代码长度必须在3-20个字符之间")
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return apperrors.NewValidation("公司代码只能包含字母、数字、中划线和下划线")
		}
	}
	return nil
}
