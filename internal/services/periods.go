package services

import (
	"strconv"
	"time"
)

// 报告期窗口：当前年份向前10年、向后2年，按墙钟实时推导
const (
	reportingPeriodYearsBack    = 10
	reportingPeriodYearsForward = 2
)

// ValidReportingPeriods 返回当前合法的报告期列表（降序）
func ValidReportingPeriods() []string {
	return validReportingPeriodsAt(time.Now())
}

// validReportingPeriodsAt 便于测试固定时间点
func validReportingPeriodsAt(now time.Time) []string {
	year := now.Year()
	periods := make([]string, 0, reportingPeriodYearsBack+reportingPeriodYearsForward+1)
	for y := year + reportingPeriodYearsForward; y >= year-reportingPeriodYearsBack; y-- {
		periods = append(periods, strconv.Itoa(y))
	}
	return periods
}

// IsValidReportingPeriod 检查报告期token是否在窗口内
func IsValidReportingPeriod(period string) bool {
	return isValidReportingPeriodAt(period, time.Now())
}

func isValidReportingPeriodAt(period string, now time.Time) bool {
	y, err := strconv.Atoi(period)
	if err != nil {
		return false
	}
	year := now.Year()
	return y >= year-reportingPeriodYearsBack && y <= year+reportingPeriodYearsForward
}
