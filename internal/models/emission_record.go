package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VerificationStatus 排放记录审核状态
type VerificationStatus string

// 审核状态常量
const (
	VerificationUnverified VerificationStatus = "unverified" // 初始态，待审核
	VerificationVerified   VerificationStatus = "verified"   // 终态
	VerificationRejected   VerificationStatus = "rejected"   // 终态，驳回后需重新录入新记录
)

// Valid 状态是否合法
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationUnverified, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo 状态机：只允许 unverified -> verified / rejected
func (s VerificationStatus) CanTransitionTo(target VerificationStatus) bool {
	if s != VerificationUnverified {
		return false
	}
	return target == VerificationVerified || target == VerificationRejected
}

// EmissionRecord 排放记录模型
//
// emission_factor是创建时刻的快照，不随排放源后续修订变化；
// co2_equivalent = activity_data × emission_factor，入库时一次算定，
// 二者共同保证历史披露数据可复现。
type EmissionRecord struct {
	BaseModel
	CompanyID         uint               `json:"company_id" gorm:"not null;index:idx_emissions_company_period"`
	UserID            uint               `json:"user_id" gorm:"not null;index"` // 录入人
	EmissionSourceID  uint               `json:"emission_source_id" gorm:"not null;index"`
	ReportingPeriod   string             `json:"reporting_period" gorm:"not null;size:20;index:idx_emissions_company_period"`
	ActivityData      decimal.Decimal    `json:"activity_data" gorm:"type:numeric(20,8);not null"`
	EmissionFactor    decimal.Decimal    `json:"emission_factor" gorm:"type:numeric(20,8);not null"` // 创建时快照
	CO2Equivalent     decimal.Decimal    `json:"co2_equivalent" gorm:"type:numeric(24,8);not null"`  // 单位kg，派生缓存值
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"not null;size:20;default:'unverified';index"`
	VerifiedBy        *uint              `json:"verified_by"`
	VerifiedAt        *time.Time         `json:"verified_at"`
	DataSource        *string            `json:"data_source" gorm:"size:255"`
	CalculationMethod *string            `json:"calculation_method" gorm:"size:255"`
	Notes             *string            `json:"notes" gorm:"size:1000"`

	Company  *Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	User     *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Source   *EmissionSource `gorm:"foreignKey:EmissionSourceID" json:"source,omitempty"`
	Verifier *User           `gorm:"foreignKey:VerifiedBy" json:"verifier,omitempty"`
}

// TableName 表名
func (r *EmissionRecord) TableName() string {
	return "emissions_data"
}
