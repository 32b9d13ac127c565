package services

import (
	"errors"

	"ghgp/internal/database"
	"ghgp/internal/models"
	apperrors "ghgp/pkg/errors"

	"gorm.io/gorm"
)

// RegistrationService 自助注册服务
//
// 两种注册路径：
//   - 加入已认证公司：创建普通用户，绑定到目标公司
//   - 注册新公司：同一事务内创建待认证公司和该公司的manager用户，
//     任一步失败则整体回滚，不留下孤儿公司
type RegistrationService struct {
	db *gorm.DB
}

func NewRegistrationService() *RegistrationService {
	return &RegistrationService{
		db: database.GetDB(),
	}
}

// RegistrationResult 注册结果
type RegistrationResult struct {
	User    *models.User    `json:"user"`
	Company *models.Company `json:"company"`
	// 新公司注册时为true，表示需等待管理员认证
	PendingVerification bool `json:"pending_verification"`
}

// CheckUsernameAvailable 检查用户名是否可用
func (s *RegistrationService) CheckUsernameAvailable(username string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, apperrors.NewPersistence(err)
	}
	return count == 0, nil
}

// CheckEmailAvailable 检查邮箱是否可用
func (s *RegistrationService) CheckEmailAvailable(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, apperrors.NewPersistence(err)
	}
	return count == 0, nil
}

// RegisterWithExistingCompany 加入已有公司注册
//
// 目标公司必须处于verified状态，新用户角色固定为normal_user。
func (s *RegistrationService) RegisterWithExistingCompany(username, email, password string, companyID uint) (*RegistrationResult, error) {
	userService := NewUserServiceWithDB(s.db)
	if err := userService.ValidateCreateParams(username, email, password); err != nil {
		return nil, err
	}

	var company models.Company
	if err := s.db.First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("公司不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}
	if company.VerificationStatus != models.CompanyStatusVerified {
		return nil, apperrors.NewValidation("该公司尚未通过认证，暂不能加入")
	}

	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		created, err := NewUserServiceWithDB(tx).Create(username, email, password, models.RoleNormalUser, &company.ID)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegistrationResult{
		User:    user,
		Company: &company,
	}, nil
}

// RegisterWithNewCompany 注册新公司
//
// 公司以pending状态创建，首个用户自动成为该公司的manager。
func (s *RegistrationService) RegisterWithNewCompany(username, email, password, companyName, companyCode, industrySector string, address, contactEmail *string) (*RegistrationResult, error) {
	userService := NewUserServiceWithDB(s.db)
	if err := userService.ValidateCreateParams(username, email, password); err != nil {
		return nil, err
	}
	if err := ValidateCompanyName(companyName); err != nil {
		return nil, err
	}
	if err := ValidateCompanyCode(companyCode); err != nil {
		return nil, err
	}

	// 公司名称与代码查重
	var count int64
	s.db.Model(&models.Company{}).Where("company_name = ? OR company_code = ?", companyName, companyCode).Count(&count)
	if count > 0 {
		return nil, apperrors.NewDuplicate("公司名称或公司代码已存在")
	}

	var user *models.User
	var company *models.Company

	err := s.db.Transaction(func(tx *gorm.DB) error {
		company = &models.Company{
			CompanyName:        companyName,
			CompanyCode:        companyCode,
			IndustrySector:     industrySector,
			Address:            address,
			ContactEmail:       contactEmail,
			VerificationStatus: models.CompanyStatusPending,
		}
		if err := tx.Create(company).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.NewDuplicate("公司名称或公司代码已存在")
			}
			return apperrors.NewPersistence(err)
		}

		created, err := NewUserServiceWithDB(tx).Create(username, email, password, models.RoleManager, &company.ID)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegistrationResult{
		User:                user,
		Company:             company,
		PendingVerification: true,
	}, nil
}
