package services

import (
	"strings"
	"testing"

	apperrors "ghgp/pkg/errors"

	"github.com/shopspring/decimal"
)

func TestValidateEmissionFactor(t *testing.T) {
	tests := []struct {
		name   string
		factor string
		unit   string
		wantOK bool
	}{
		{"电网因子正常", "0.193", "kg CO2e/kWh", true},
		{"电力因子超限", "7.5", "kg CO2e/kWh", false},
		{"柴油因子正常", "2.68", "kg CO2e/liter", true},
		{"燃油因子超限", "20", "kg CO2e/litre", false},
		{"里程因子正常", "0.246", "kg CO2e/km", true},
		{"制冷剂按分母kg档拦截", "200", "kg CO2e/kg", false},
		{"制冷剂kg档内通过", "50", "kg CO2e/kg", true},
		{"未知单位走兜底上限", "5000", "kg CO2e/widget", true},
		{"兜底上限仍能拦截离谱值", "2000000", "kg CO2e/widget", false},
		{"零因子合法", "0", "kg CO2e/kWh", true},
		{"负因子非法", "-1.5", "kg CO2e/kWh", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factor, err := decimal.NewFromString(tt.factor)
			if err != nil {
				t.Fatalf("构造decimal失败: %v", err)
			}

			err = ValidateEmissionFactor(factor, tt.unit)
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

func TestValidateSourceName(t *testing.T) {
	if err := ValidateSourceName("自有车队柴油"); err != nil {
		t.Errorf("正常名称不应报错: %v", err)
	}
	if err := ValidateSourceName("x"); err == nil {
		t.Error("过短名称应当报错")
	}
	if err := ValidateSourceName(strings.Repeat("a", 201)); err == nil {
		t.Error("过长名称应当报错")
	}
}

func TestValidateCompanyCode(t *testing.T) {
	valid := []string{"ACME", "acme-01", "my_company", "ab1"}
	for _, code := range valid {
		if err := ValidateCompanyCode(code); err != nil {
			t.Errorf("%q 应当合法: %v", code, err)
		}
	}

	invalid := []string{"ab", "has space", "中文代码", "bad!code", strings.Repeat("x", 21)}
	for _, code := range invalid {
		if err := ValidateCompanyCode(code); err == nil {
			t.Errorf("%q 不应当合法", code)
		}
	}
}
