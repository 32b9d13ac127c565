package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ghgp/internal/database"
	"ghgp/internal/models"
	apperrors "ghgp/pkg/errors"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

// UserStats 用户统计信息
type UserStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Admins   int64 `json:"admins"`
	Managers int64 `json:"managers"`
}

func NewUserService() *UserService {
	return &UserService{
		db: database.GetDB(),
	}
}

// NewUserServiceWithDB 指定数据库实例（事务场景使用）
func NewUserServiceWithDB(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户（管理员操作，可指定角色与公司）
func (s *UserService) Create(username, email, password string, role models.Role, companyID *uint) (*models.User, error) {
	// 验证参数
	if err := s.ValidateCreateParams(username, email, password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidation("角色只能是admin、manager或normal_user")
	}

	// 检查公司是否存在
	if companyID != nil {
		var companyCount int64
		s.db.Model(&models.Company{}).Where("id = ?", *companyID).Count(&companyCount)
		if companyCount == 0 {
			return nil, apperrors.NewValidation("公司不存在")
		}
	}

	// 检查用户名是否重复
	var usernameCount int64
	s.db.Model(&models.User{}).Where("username = ?", username).Count(&usernameCount)
	if usernameCount > 0 {
		return nil, apperrors.NewDuplicate("用户名已存在")
	}

	// 检查邮箱是否重复
	var emailCount int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&emailCount)
	if emailCount > 0 {
		return nil, apperrors.NewDuplicate("邮箱已存在")
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
		IsActive:  true,
	}

	// 设置密码
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewDuplicate("用户名或邮箱已存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	return user, nil
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Company").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("用户不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Company").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("用户不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Company").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("用户不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}
	return &user, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *UserService) GetWithFiltersAndPage(companyID *uint, role models.Role, keyword string, page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{})

	// 添加过滤条件
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("username LIKE ? OR email LIKE ?", searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewPersistence(err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := query.Preload("Company").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, apperrors.NewPersistence(err)
	}

	return users, total, nil
}

// Update 更新用户
func (s *UserService) Update(id uint, email string, role models.Role, companyID *uint) (*models.User, error) {
	if !s.ValidateEmail(email) {
		return nil, apperrors.NewValidation("邮箱格式不正确")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidation("角色只能是admin、manager或normal_user")
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("用户不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	// 如果邮箱变更，检查是否重复
	if user.Email != email {
		var emailCount int64
		s.db.Model(&models.User{}).Where("email = ? AND id != ?", email, id).Count(&emailCount)
		if emailCount > 0 {
			return nil, apperrors.NewDuplicate("邮箱已存在")
		}
	}

	user.Email = email
	user.Role = role
	user.CompanyID = companyID

	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return &user, nil
}

// Delete 删除用户
func (s *UserService) Delete(id uint) error {
	result := s.db.Delete(&models.User{}, id)
	if result.Error != nil {
		return apperrors.NewPersistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("用户不存在")
	}
	return nil
}

// ========== 快捷操作方法 ==========

// Activate 激活用户
func (s *UserService) Activate(id uint) (*models.User, error) {
	return s.setActive(id, true)
}

// Deactivate 停用用户
func (s *UserService) Deactivate(id uint) (*models.User, error) {
	return s.setActive(id, false)
}

func (s *UserService) setActive(id uint, active bool) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("用户不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	user.IsActive = active
	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return &user, nil
}

// ResetPassword 重置密码
func (s *UserService) ResetPassword(id uint, newPassword string) (*models.User, error) {
	if err := s.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("用户不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	if err := user.SetPassword(newPassword); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return &user, nil
}

// UpdateLastLogin 更新最后登录时间
func (s *UserService) UpdateLastLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", now).Error
}

// ========== 统计相关方法 ==========

// GetStats 获取用户统计
func (s *UserService) GetStats() (*UserStats, error) {
	stats := &UserStats{}

	s.db.Model(&models.User{}).Count(&stats.Total)
	s.db.Model(&models.User{}).Where("is_active = ?", true).Count(&stats.Active)
	s.db.Model(&models.User{}).Where("is_active = ?", false).Count(&stats.Inactive)
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&stats.Admins)
	s.db.Model(&models.User{}).Where("role = ?", models.RoleManager).Count(&stats.Managers)

	return stats, nil
}

// ========== 验证相关方法 ==========

// ValidateUsername 验证用户名
func (s *UserService) ValidateUsername(username string) bool {
	if len(username) < 3 || len(username) > 50 {
		return false
	}
	// 检查是否只包含字母、数字和下划线
	for _, r := range username {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// ValidateEmail 验证邮箱
func (s *UserService) ValidateEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".") && len(email) >= 5 && len(email) <= 100
}

// ValidatePassword 验证密码
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 6 {
		return apperrors.NewValidation("密码长度不能少于6位")
	}
	if len(password) > 50 {
		return apperrors.NewValidation("密码长度不能超过50位")
	}
	return nil
}

// ValidateCreateParams 验证创建用户的参数
func (s *UserService) ValidateCreateParams(username, email, password string) error {
	if !s.ValidateUsername(username) {
		return apperrors.NewValidation("用户名长度必须在3-50个字符之间，且只能包含字母、数字和下划线")
	}
	if !s.ValidateEmail(email) {
		return apperrors.NewValidation("邮箱格式不正确")
	}
	return s.ValidatePassword(password)
}
