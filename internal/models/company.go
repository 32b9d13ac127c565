package models

// CompanyStatus 公司认证状态
type CompanyStatus string

// 公司认证状态常量
const (
	CompanyStatusPending  CompanyStatus = "pending"  // 待认证
	CompanyStatusVerified CompanyStatus = "verified" // 已认证
	CompanyStatusRejected CompanyStatus = "rejected" // 已驳回
)

// Valid 状态是否合法
func (s CompanyStatus) Valid() bool {
	switch s {
	case CompanyStatusPending, CompanyStatusVerified, CompanyStatusRejected:
		return true
	default:
		return false
	}
}

// Company 公司（租户）模型 - 贫血模型，只包含数据结构
type Company struct {
	BaseModel
	CompanyName        string        `json:"company_name" gorm:"unique;not null;size:200"`
	CompanyCode        string        `json:"company_code" gorm:"unique;not null;size:20;index"`
	IndustrySector     string        `json:"industry_sector" gorm:"size:100"`
	Address            *string       `json:"address" gorm:"size:500"`
	ContactEmail       *string       `json:"contact_email" gorm:"size:100"`
	VerificationStatus CompanyStatus `json:"verification_status" gorm:"not null;size:20;default:'pending';index"`

	UserCount int `json:"user_count" gorm:"-"` // 用户数量，不存储在数据库中
}

// TableName 表名
func (c *Company) TableName() string {
	return "companies"
}
