package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ghgp/internal/database"
	"ghgp/internal/models"
	"ghgp/pkg/cache"
	apperrors "ghgp/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EmissionService struct {
	db     *gorm.DB
	cache  *cache.RedisCache
	events *EventHub
}

func NewEmissionService() *EmissionService {
	return &EmissionService{
		db:     database.GetDB(),
		cache:  database.GetCache(),
		events: GetEventHub(),
	}
}

// CreateParams 排放记录创建参数
type CreateParams struct {
	CompanyID         uint
	UserID            uint
	EmissionSourceID  uint
	ReportingPeriod   string
	ActivityData      decimal.Decimal
	DataSource        *string
	CalculationMethod *string
	Notes             *string
}

// ImportRow 批量导入的一行
//
// 行以source_code定位排放源（导入模板面向人工填写，用代码不用内部ID）。
// 行内字段不做绑定层校验，缺失或非法在导入时逐行落入失败明细。
type ImportRow struct {
	RowNumber       int             `json:"row_number"`
	SourceCode      string          `json:"source_code"`
	ReportingPeriod string          `json:"reporting_period"`
	ActivityData    decimal.Decimal `json:"activity_data"`
	DataSource      *string         `json:"data_source"`
	Notes           *string         `json:"notes"`
}

// validateImportRow 行级预校验，与数据库无关的错误先在这里拦下
func validateImportRow(row ImportRow) error {
	if strings.TrimSpace(row.SourceCode) == "" {
		return apperrors.NewValidation("source_code不能为空")
	}
	if !IsValidReportingPeriod(strings.TrimSpace(row.ReportingPeriod)) {
		return apperrors.NewValidation("报告期%s不在有效范围内", row.ReportingPeriod)
	}
	if row.ActivityData.LessThanOrEqual(decimal.Zero) {
		return apperrors.NewValidation("活动数据必须大于0")
	}
	return nil
}

// ImportFailure 单行导入失败明细
type ImportFailure struct {
	RowNumber int    `json:"row_number"`
	Reason    string `json:"reason"`
}

// ImportResult 批量导入结果
type ImportResult struct {
	BatchID      string          `json:"batch_id"`
	TotalRows    int             `json:"total_rows"`
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
	AutoVerified bool            `json:"auto_verified"`
	Failures     []ImportFailure `json:"failures"`
}

// EmissionStats 排放记录审核统计
type EmissionStats struct {
	Total      int64 `json:"total"`
	Unverified int64 `json:"unverified"`
	Verified   int64 `json:"verified"`
	Rejected   int64 `json:"rejected"`
}

// invalidateSummary 失效该公司的汇总缓存，所有写路径必须调用
func (s *EmissionService) invalidateSummary(companyID uint) {
	_ = s.cache.DeletePrefix(fmt.Sprintf("summary:company:%d:", companyID))
}

// ========== 记录创建 ==========

// Create 创建排放记录
//
// 排放因子在此刻从排放源快照到记录上，co2_equivalent一次算定，
// 后续排放源因子修订不回溯已有记录。新记录固定为unverified。
func (s *EmissionService) Create(params CreateParams) (*models.EmissionRecord, error) {
	record, err := s.buildRecord(params)
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	s.invalidateSummary(params.CompanyID)
	s.events.Publish(ReviewEvent{
		Type:            EventRecordCreated,
		CompanyID:       record.CompanyID,
		RecordID:        record.ID,
		ReportingPeriod: record.ReportingPeriod,
		Status:          record.VerificationStatus,
		OperatorID:      params.UserID,
		Timestamp:       time.Now(),
	})

	return record, nil
}

// buildRecord 校验参数并组装记录（不落库）
func (s *EmissionService) buildRecord(params CreateParams) (*models.EmissionRecord, error) {
	if !IsValidReportingPeriod(params.ReportingPeriod) {
		return nil, apperrors.NewValidation("报告期%s不在有效范围内", params.ReportingPeriod)
	}
	if params.ActivityData.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("活动数据必须大于0")
	}

	var source models.EmissionSource
	if err := s.db.First(&source, params.EmissionSourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewValidation("排放源不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}

	return s.buildRecordFromSource(params, &source)
}

// buildRecordFromSource 在已定位排放源的前提下校验可用性并组装记录
func (s *EmissionService) buildRecordFromSource(params CreateParams, source *models.EmissionSource) (*models.EmissionRecord, error) {
	// 可用性检查：停用或隐藏的源不可选；自建源只对所属公司可用
	if !source.IsActive || !source.IsVisibleInUI {
		return nil, apperrors.NewValidation("排放源%s当前不可用", source.SourceCode)
	}
	if source.IsCustom() && (source.CompanyID == nil || *source.CompanyID != params.CompanyID) {
		return nil, apperrors.NewPermissionDenied("不能使用其他公司的自建排放源")
	}

	return &models.EmissionRecord{
		CompanyID:          params.CompanyID,
		UserID:             params.UserID,
		EmissionSourceID:   source.ID,
		ReportingPeriod:    params.ReportingPeriod,
		ActivityData:       params.ActivityData,
		EmissionFactor:     source.EmissionFactor,
		CO2Equivalent:      params.ActivityData.Mul(source.EmissionFactor),
		VerificationStatus: models.VerificationUnverified,
		DataSource:         params.DataSource,
		CalculationMethod:  params.CalculationMethod,
		Notes:              params.Notes,
	}, nil
}

// ========== 批量导入 ==========

// BulkImport 批量导入排放记录
//
// 逐行独立提交：任一行失败只记入失败明细，不影响其他行。
// autoVerify要求调用方具备审核权限，由handler层把关后传入。
func (s *EmissionService) BulkImport(companyID, userID uint, rows []ImportRow, autoVerify bool) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidation("导入数据不能为空")
	}

	result := &ImportResult{
		BatchID:      uuid.New().String(),
		TotalRows:    len(rows),
		AutoVerified: autoVerify,
		Failures:     make([]ImportFailure, 0),
	}

	now := time.Now()
	for i, row := range rows {
		rowNumber := row.RowNumber
		if rowNumber == 0 {
			rowNumber = i + 1
		}

		if err := validateImportRow(row); err != nil {
			result.Failures = append(result.Failures, ImportFailure{
				RowNumber: rowNumber,
				Reason:    err.Error(),
			})
			continue
		}

		sourceCode := strings.TrimSpace(row.SourceCode)
		var source models.EmissionSource
		if err := s.db.Where("source_code = ?", sourceCode).First(&source).Error; err != nil {
			reason := "查询排放源失败"
			if errors.Is(err, gorm.ErrRecordNotFound) {
				reason = fmt.Sprintf("排放源代码%s不存在", sourceCode)
			}
			result.Failures = append(result.Failures, ImportFailure{
				RowNumber: rowNumber,
				Reason:    reason,
			})
			continue
		}

		record, err := s.buildRecordFromSource(CreateParams{
			CompanyID:        companyID,
			UserID:           userID,
			EmissionSourceID: source.ID,
			ReportingPeriod:  strings.TrimSpace(row.ReportingPeriod),
			ActivityData:     row.ActivityData,
			DataSource:       row.DataSource,
			Notes:            row.Notes,
		}, &source)
		if err != nil {
			result.Failures = append(result.Failures, ImportFailure{
				RowNumber: rowNumber,
				Reason:    err.Error(),
			})
			continue
		}

		if autoVerify {
			record.VerificationStatus = models.VerificationVerified
			record.VerifiedBy = &userID
			record.VerifiedAt = &now
		}

		if err := s.db.Create(record).Error; err != nil {
			result.Failures = append(result.Failures, ImportFailure{
				RowNumber: rowNumber,
				Reason:    "保存失败",
			})
			continue
		}
		result.SuccessCount++
	}
	result.FailureCount = len(result.Failures)

	// 批次日志落库失败不影响已导入数据
	failuresJSON, _ := json.Marshal(result.Failures)
	batch := &models.ImportBatch{
		BatchID:      result.BatchID,
		CompanyID:    companyID,
		UserID:       userID,
		TotalRows:    result.TotalRows,
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		AutoVerified: autoVerify,
		Failures:     datatypes.JSON(failuresJSON),
	}
	_ = s.db.Create(batch).Error

	if result.SuccessCount > 0 {
		s.invalidateSummary(companyID)
	}

	return result, nil
}

// GetImportBatch 查询导入批次
func (s *EmissionService) GetImportBatch(batchID string, companyID uint) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := s.db.Where("batch_id = ? AND company_id = ?", batchID, companyID).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("导入批次不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}
	return &batch, nil
}

// ========== 查询 ==========

// GetByID 根据ID获取排放记录（限定公司）
func (s *EmissionService) GetByID(id, companyID uint) (*models.EmissionRecord, error) {
	var record models.EmissionRecord
	err := s.db.Preload("Source").Preload("User").Preload("Verifier").
		Where("id = ? AND company_id = ?", id, companyID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("排放记录不存在")
		}
		return nil, apperrors.NewPersistence(err)
	}
	return &record, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *EmissionService) GetWithFiltersAndPage(companyID uint, period string, status models.VerificationStatus, scopeNumber *int, sourceID *uint, userID *uint, page, pageSize int) ([]*models.EmissionRecord, int64, error) {
	var records []*models.EmissionRecord
	var total int64

	query := s.db.Model(&models.EmissionRecord{}).Where("emissions_data.company_id = ?", companyID)

	if period != "" {
		query = query.Where("emissions_data.reporting_period = ?", period)
	}
	if status != "" {
		query = query.Where("emissions_data.verification_status = ?", status)
	}
	if scopeNumber != nil {
		query = query.
			Joins("JOIN ghg_emission_sources ON ghg_emission_sources.id = emissions_data.emission_source_id").
			Joins("JOIN ghg_categories ON ghg_categories.id = ghg_emission_sources.category_id").
			Joins("JOIN ghg_scopes ON ghg_scopes.id = ghg_categories.scope_id").
			Where("ghg_scopes.scope_number = ?", *scopeNumber)
	}
	if sourceID != nil {
		query = query.Where("emissions_data.emission_source_id = ?", *sourceID)
	}
	if userID != nil {
		query = query.Where("emissions_data.user_id = ?", *userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewPersistence(err)
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Source").Preload("User").
		Order("emissions_data.created_at DESC").Offset(offset).Limit(pageSize).Find(&records).Error
	if err != nil {
		return nil, 0, apperrors.NewPersistence(err)
	}

	return records, total, nil
}

// Export 导出某报告期的全部记录（不分页，报表用）
func (s *EmissionService) Export(companyID uint, period string) ([]*models.EmissionRecord, error) {
	if !IsValidReportingPeriod(period) {
		return nil, apperrors.NewValidation("报告期%s不在有效范围内", period)
	}

	var records []*models.EmissionRecord
	err := s.db.Preload("Source").Preload("Source.Category").Preload("Source.Category.Scope").
		Preload("User").Preload("Verifier").
		Where("company_id = ? AND reporting_period = ?", companyID, period).
		Order("created_at").Find(&records).Error
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return records, nil
}

// ========== 审核流转 ==========

// Verify 审核通过
func (s *EmissionService) Verify(id, companyID, verifierID uint) (*models.EmissionRecord, error) {
	return s.transition(id, companyID, verifierID, models.VerificationVerified)
}

// Reject 审核驳回
func (s *EmissionService) Reject(id, companyID, verifierID uint) (*models.EmissionRecord, error) {
	return s.transition(id, companyID, verifierID, models.VerificationRejected)
}

func (s *EmissionService) transition(id, companyID, verifierID uint, target models.VerificationStatus) (*models.EmissionRecord, error) {
	record, err := s.GetByID(id, companyID)
	if err != nil {
		return nil, err
	}

	if !record.VerificationStatus.CanTransitionTo(target) {
		return nil, apperrors.NewInvalidStateTransition(
			"记录当前状态为%s，不能变更为%s", record.VerificationStatus, target)
	}

	now := time.Now()
	record.VerificationStatus = target
	record.VerifiedBy = &verifierID
	record.VerifiedAt = &now

	if err := s.db.Save(record).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	s.invalidateSummary(companyID)

	eventType := EventRecordVerified
	if target == models.VerificationRejected {
		eventType = EventRecordRejected
	}
	s.events.Publish(ReviewEvent{
		Type:            eventType,
		CompanyID:       record.CompanyID,
		RecordID:        record.ID,
		ReportingPeriod: record.ReportingPeriod,
		Status:          record.VerificationStatus,
		OperatorID:      verifierID,
		Timestamp:       now,
	})

	return record, nil
}

// ========== 记录维护 ==========

// Update 更新排放记录
//
// 仅未审核记录可改。活动数据变化时用记录上的快照因子重算
// co2_equivalent，不重新读取排放源的当前因子。
func (s *EmissionService) Update(id, companyID uint, activityData decimal.Decimal, dataSource, calculationMethod, notes *string) (*models.EmissionRecord, error) {
	record, err := s.GetByID(id, companyID)
	if err != nil {
		return nil, err
	}

	if record.VerificationStatus != models.VerificationUnverified {
		return nil, apperrors.NewInvalidStateTransition("已审核的记录不允许修改")
	}
	if activityData.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("活动数据必须大于0")
	}

	record.ActivityData = activityData
	record.CO2Equivalent = activityData.Mul(record.EmissionFactor)
	record.DataSource = dataSource
	record.CalculationMethod = calculationMethod
	record.Notes = notes

	if err := s.db.Save(record).Error; err != nil {
		return nil, apperrors.NewPersistence(err)
	}

	s.invalidateSummary(companyID)
	return record, nil
}

// Delete 删除排放记录（仅未审核记录）
func (s *EmissionService) Delete(id, companyID uint) error {
	record, err := s.GetByID(id, companyID)
	if err != nil {
		return err
	}

	if record.VerificationStatus != models.VerificationUnverified {
		return apperrors.NewInvalidStateTransition("已审核的记录不允许删除")
	}

	if err := s.db.Delete(&models.EmissionRecord{}, id).Error; err != nil {
		return apperrors.NewPersistence(err)
	}

	s.invalidateSummary(companyID)
	return nil
}

// ========== 统计相关方法 ==========

// GetStats 获取公司排放记录的审核统计
func (s *EmissionService) GetStats(companyID uint, period string) (*EmissionStats, error) {
	stats := &EmissionStats{}

	base := s.db.Model(&models.EmissionRecord{}).Where("company_id = ?", companyID)
	if period != "" {
		base = base.Where("reporting_period = ?", period)
	}

	base.Session(&gorm.Session{}).Count(&stats.Total)
	base.Session(&gorm.Session{}).Where("verification_status = ?", models.VerificationUnverified).Count(&stats.Unverified)
	base.Session(&gorm.Session{}).Where("verification_status = ?", models.VerificationVerified).Count(&stats.Verified)
	base.Session(&gorm.Session{}).Where("verification_status = ?", models.VerificationRejected).Count(&stats.Rejected)

	return stats, nil
}
