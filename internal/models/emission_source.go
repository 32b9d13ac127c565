package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scope GHG范围（固定三档：直接排放、外购能源间接排放、其他间接排放）
type Scope struct {
	BaseModel
	ScopeNumber int    `json:"scope_number" gorm:"unique;not null"` // 1 / 2 / 3
	ScopeName   string `json:"scope_name" gorm:"not null;size:100"`
	Description string `json:"description" gorm:"size:255"`
}

// TableName 表名
func (s *Scope) TableName() string {
	return "ghg_scopes"
}

// Category 排放类别，挂在某个Scope下
type Category struct {
	BaseModel
	ScopeID      uint   `json:"scope_id" gorm:"not null;index"`
	CategoryCode string `json:"category_code" gorm:"unique;not null;size:20"`
	CategoryName string `json:"category_name" gorm:"not null;size:100"`
	Description  string `json:"description" gorm:"size:255"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`

	Scope *Scope `gorm:"foreignKey:ScopeID" json:"scope,omitempty"`
}

// TableName 表名
func (c *Category) TableName() string {
	return "ghg_categories"
}

// 排放源类型常量
const (
	SourceTypeSystem = "system" // 系统内置，全局共享
	SourceTypeCustom = "custom" // 公司自建
)

// EmissionSource 排放源模型
//
// 系统源company_id为空；自建源company_id必须等于创建公司。
// 排放因子修订不改写历史，改动追加到ghg_source_history并递增version。
type EmissionSource struct {
	BaseModel
	CategoryID          uint            `json:"category_id" gorm:"not null;index"`
	SourceCode          string          `json:"source_code" gorm:"unique;not null;size:50;index"`
	SourceName          string          `json:"source_name" gorm:"not null;size:200"`
	EmissionFactor      decimal.Decimal `json:"emission_factor" gorm:"type:numeric(20,8);not null"`
	Unit                string          `json:"unit" gorm:"not null;size:50"` // 如 kg CO2e/kWh
	Description         string          `json:"description" gorm:"size:500"`
	DataSourceReference string          `json:"data_source_reference" gorm:"size:255"` // 因子出处
	SourceType          string          `json:"source_type" gorm:"not null;size:20;default:'system';index"`
	CompanyID           *uint           `json:"company_id" gorm:"index"`
	IsActive            bool            `json:"is_active" gorm:"default:true"`
	IsVisibleInUI       bool            `json:"is_visible_in_ui" gorm:"default:true"`
	Version             int             `json:"version" gorm:"default:1"` // 因子修订版本，单调递增
	Region              string          `json:"region" gorm:"size:100"`
	ReferenceYear       *int            `json:"reference_year"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Company  *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

// TableName 表名
func (s *EmissionSource) TableName() string {
	return "ghg_emission_sources"
}

// IsCustom 是否公司自建源
func (s *EmissionSource) IsCustom() bool {
	return s.SourceType == SourceTypeCustom
}

// SourceHistory 排放因子变更历史（只追加）
type SourceHistory struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	SourceID       uint            `json:"source_id" gorm:"not null;index"`
	EmissionFactor decimal.Decimal `json:"emission_factor" gorm:"type:numeric(20,8);not null"` // 变更前生效的因子值
	ChangedBy      uint            `json:"changed_by" gorm:"not null"`
	ChangedAt      time.Time       `json:"changed_at"`
	ChangeReason   string          `json:"change_reason" gorm:"size:255"`

	Source *EmissionSource `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

// TableName 表名
func (h *SourceHistory) TableName() string {
	return "ghg_source_history"
}
