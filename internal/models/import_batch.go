package models

import (
	"gorm.io/datatypes"
)

// ImportBatch 批量导入批次
//
// 逐行独立提交：单行失败不回滚其余行，失败明细以JSON整体落库备查。
type ImportBatch struct {
	BaseModel
	BatchID      string         `json:"batch_id" gorm:"unique;not null;size:36;index"` // UUID
	CompanyID    uint           `json:"company_id" gorm:"not null;index"`
	UserID       uint           `json:"user_id" gorm:"not null"` // 上传人
	TotalRows    int            `json:"total_rows" gorm:"not null"`
	SuccessCount int            `json:"success_count" gorm:"not null"`
	FailureCount int            `json:"failure_count" gorm:"not null"`
	AutoVerified bool           `json:"auto_verified" gorm:"default:false"`
	Failures     datatypes.JSON `json:"failures" gorm:"type:json"` // [{row_number, reason}]

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 表名
func (b *ImportBatch) TableName() string {
	return "import_batches"
}
