package services

import (
	"fmt"
	"strconv"
	"time"

	"ghgp/internal/models"
	"ghgp/pkg/logger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// 默认每天凌晨2点预热
const defaultWarmCron = "0 2 * * *"

// SummaryScheduler 排放汇总预热调度器
//
// 定时为所有已认证公司预先计算当前报告期的汇总并写入缓存，
// 避免早高峰首次查询都打到数据库。
type SummaryScheduler struct {
	db       *gorm.DB
	summary  *SummaryService
	cron     *cron.Cron
	cronSpec string
	running  bool
}

// NewSummaryScheduler 创建汇总预热调度器
func NewSummaryScheduler(db *gorm.DB, summary *SummaryService) *SummaryScheduler {
	return &SummaryScheduler{
		db:       db,
		summary:  summary,
		cron:     cron.New(),
		cronSpec: defaultWarmCron,
	}
}

// Start 启动调度器
func (s *SummaryScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	_, err := s.cron.AddFunc(s.cronSpec, s.warmAll)
	if err != nil {
		return fmt.Errorf("注册预热任务失败: %v", err)
	}

	s.cron.Start()
	s.running = true

	logger.GetLogger().Infof("排放汇总预热调度器启动成功，cron: %s", s.cronSpec)
	return nil
}

// Stop 停止调度器
func (s *SummaryScheduler) Stop() {
	if !s.running {
		return
	}

	logger.GetLogger().Info("停止排放汇总预热调度器")
	s.cron.Stop()
	s.running = false
}

// warmAll 为所有已认证公司预热当前年度与上一年度的汇总
func (s *SummaryScheduler) warmAll() {
	start := time.Now()

	var companies []models.Company
	err := s.db.Where("verification_status = ?", models.CompanyStatusVerified).Find(&companies).Error
	if err != nil {
		logger.GetLogger().Errorf("汇总预热加载公司列表失败: %v", err)
		return
	}

	currentYear := time.Now().Year()
	periods := []string{
		strconv.Itoa(currentYear),
		strconv.Itoa(currentYear - 1),
	}

	warmed := 0
	for _, company := range companies {
		if err := s.summary.WarmCompanySummaries(company.ID, periods); err != nil {
			logger.GetLogger().Errorf("公司 %s (ID: %d) 汇总预热失败: %v", company.CompanyName, company.ID, err)
			continue
		}
		warmed++
	}

	logger.GetLogger().Infof("汇总预热完成：%d/%d 个公司，耗时 %v", warmed, len(companies), time.Since(start))
}
