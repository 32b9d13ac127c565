package services

import (
	"testing"
	"time"
)

func TestValidReportingPeriodsWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	periods := validReportingPeriodsAt(now)

	if len(periods) != reportingPeriodYearsBack+reportingPeriodYearsForward+1 {
		t.Fatalf("期望%d个报告期，得到%d个", reportingPeriodYearsBack+reportingPeriodYearsForward+1, len(periods))
	}

	// 降序，首尾对应窗口边界
	if periods[0] != "2028" {
		t.Errorf("首个报告期应为2028，得到%s", periods[0])
	}
	if periods[len(periods)-1] != "2016" {
		t.Errorf("末个报告期应为2016，得到%s", periods[len(periods)-1])
	}
}

func TestIsValidReportingPeriod(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   bool
	}{
		{"2026", true},
		{"2028", true}, // 前向边界
		{"2016", true}, // 后向边界
		{"2029", false},
		{"2015", false},
		{"abc", false},
		{"", false},
		{"2026.5", false},
	}

	for _, tt := range tests {
		if got := isValidReportingPeriodAt(tt.period, now); got != tt.want {
			t.Errorf("isValidReportingPeriodAt(%q) = %v, want %v", tt.period, got, tt.want)
		}
	}
}

func TestWindowSlidesWithClock(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2039, 1, 1, 0, 0, 0, 0, time.UTC)

	if !isValidReportingPeriodAt("2026", early) {
		t.Error("2026在2026年应当有效")
	}
	if isValidReportingPeriodAt("2026", late) {
		t.Error("2026在2039年已滑出窗口，不应有效")
	}
}
