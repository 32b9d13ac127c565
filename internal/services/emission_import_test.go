package services

import (
	"fmt"
	"testing"
	"time"

	apperrors "ghgp/pkg/errors"

	"github.com/shopspring/decimal"
)

// 批量导入的行以source_code定位排放源，行级错误不应拖垮整批
func TestValidateImportRow(t *testing.T) {
	period := fmt.Sprintf("%d", time.Now().Year())
	one := decimal.NewFromInt(1)

	tests := []struct {
		name   string
		row    ImportRow
		wantOK bool
	}{
		{"正常行", ImportRow{SourceCode: "SYS-GRID-001", ReportingPeriod: period, ActivityData: one}, true},
		{"代码带空白也接受", ImportRow{SourceCode: "  SYS-GRID-001  ", ReportingPeriod: period, ActivityData: one}, true},
		{"缺source_code", ImportRow{ReportingPeriod: period, ActivityData: one}, false},
		{"报告期超窗", ImportRow{SourceCode: "SYS-GRID-001", ReportingPeriod: "1999", ActivityData: one}, false},
		{"活动数据为零", ImportRow{SourceCode: "SYS-GRID-001", ReportingPeriod: period}, false},
		{"活动数据为负", ImportRow{SourceCode: "SYS-GRID-001", ReportingPeriod: period, ActivityData: decimal.NewFromInt(-3)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateImportRow(tt.row)
			if tt.wantOK && err != nil {
				t.Errorf("期望通过，得到错误: %v", err)
			}
			if !tt.wantOK {
				if err == nil {
					t.Fatal("期望校验失败，却通过了")
				}
				if !apperrors.IsValidation(err) {
					t.Errorf("期望KindValidation错误，得到 %v", err)
				}
			}
		})
	}
}
