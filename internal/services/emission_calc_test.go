package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

// 活动数据×因子的派生值必须精确，不能出现浮点尾差
func TestCO2EquivalentExactMultiply(t *testing.T) {
	activity := decimal.RequireFromString("1234.56789")
	factor := decimal.RequireFromString("0.193")

	got := activity.Mul(factor)
	want := decimal.RequireFromString("238.27160277")

	if !got.Equal(want) {
		t.Errorf("co2_equivalent = %s, want %s", got, want)
	}
}

// 汇总是大量小数相加，0.1累加一千次必须精确等于100
func TestSummationExactness(t *testing.T) {
	step := decimal.RequireFromString("0.1")

	sum := decimal.Zero
	for i := 0; i < 1000; i++ {
		sum = sum.Add(step)
	}

	if !sum.Equal(decimal.NewFromInt(100)) {
		t.Errorf("0.1累加1000次 = %s, want 100", sum)
	}
}

// kg到tonnes的换算必须精确除以1000
func TestKgToTonnesConversion(t *testing.T) {
	kg := decimal.RequireFromString("238271.60277")

	tonnes := kg.Div(kgPerTonne)
	want := decimal.RequireFromString("238.27160277")

	if !tonnes.Equal(want) {
		t.Errorf("tonnes = %s, want %s", tonnes, want)
	}
}
