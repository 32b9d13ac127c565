package handlers

import (
	"strconv"

	"ghgp/internal/middleware"
	"ghgp/internal/models"
	"ghgp/internal/rbac"
	"ghgp/internal/services"
	"ghgp/pkg/pagination"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EmissionHandler 排放记录处理器
type EmissionHandler struct {
	emissionService *services.EmissionService
}

func NewEmissionHandler() *EmissionHandler {
	return &EmissionHandler{
		emissionService: services.NewEmissionService(),
	}
}

// Periods 当前有效的报告期列表
func (h *EmissionHandler) Periods(c *gin.Context) {
	response.Success(c, services.ValidReportingPeriods())
}

// Create 创建排放记录
func (h *EmissionHandler) Create(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	var req struct {
		EmissionSourceID  uint            `json:"emission_source_id" binding:"required"`
		ReportingPeriod   string          `json:"reporting_period" binding:"required"`
		ActivityData      decimal.Decimal `json:"activity_data" binding:"required"`
		DataSource        *string         `json:"data_source"`
		CalculationMethod *string         `json:"calculation_method"`
		Notes             *string         `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	record, err := h.emissionService.Create(services.CreateParams{
		CompanyID:         companyID,
		UserID:            middleware.GetUserID(c),
		EmissionSourceID:  req.EmissionSourceID,
		ReportingPeriod:   req.ReportingPeriod,
		ActivityData:      req.ActivityData,
		DataSource:        req.DataSource,
		CalculationMethod: req.CalculationMethod,
		Notes:             req.Notes,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", record)
}

// BulkImport 批量导入排放记录
func (h *EmissionHandler) BulkImport(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	var req struct {
		Rows       []services.ImportRow `json:"rows" binding:"required"`
		AutoVerify bool                 `json:"auto_verify"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// auto_verify需要审核权限，普通录入人只能以未审核状态导入
	if req.AutoVerify && !rbac.HasPermission(middleware.GetRole(c), rbac.PermVerifyData) {
		response.Forbidden(c, "没有审核权限，不能自动审核导入数据")
		return
	}

	result, err := h.emissionService.BulkImport(companyID, middleware.GetUserID(c), req.Rows, req.AutoVerify)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "导入完成", result)
}

// GetImportBatch 查询导入批次
func (h *EmissionHandler) GetImportBatch(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	batch, err := h.emissionService.GetImportBatch(c.Param("batch_id"), companyID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, batch)
}

// List 排放记录列表
func (h *EmissionHandler) List(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	params := pagination.ParsePageParams(c)
	period := c.Query("period")
	status := models.VerificationStatus(c.Query("status"))

	var scopeNumber *int
	if raw := c.Query("scope"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			scopeNumber = &n
		}
	}

	var sourceID *uint
	if raw := c.Query("source_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			sourceID = &v
		}
	}

	var userID *uint
	if raw := c.Query("user_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			userID = &v
		}
	}

	records, total, err := h.emissionService.GetWithFiltersAndPage(companyID, period, status, scopeNumber, sourceID, userID, params.Page, params.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, records, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 排放记录详情
func (h *EmissionHandler) Get(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的记录ID")
		return
	}

	record, err := h.emissionService.GetByID(uint(id), companyID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, record)
}

// Verify 审核通过
func (h *EmissionHandler) Verify(c *gin.Context) {
	h.transition(c, true)
}

// Reject 审核驳回
func (h *EmissionHandler) Reject(c *gin.Context) {
	h.transition(c, false)
}

func (h *EmissionHandler) transition(c *gin.Context, approve bool) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的记录ID")
		return
	}

	var record *models.EmissionRecord
	if approve {
		record, err = h.emissionService.Verify(uint(id), companyID, middleware.GetUserID(c))
	} else {
		record, err = h.emissionService.Reject(uint(id), companyID, middleware.GetUserID(c))
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "操作成功", record)
}

// Update 更新排放记录
func (h *EmissionHandler) Update(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的记录ID")
		return
	}

	var req struct {
		ActivityData      decimal.Decimal `json:"activity_data" binding:"required"`
		DataSource        *string         `json:"data_source"`
		CalculationMethod *string         `json:"calculation_method"`
		Notes             *string         `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	record, err := h.emissionService.Update(uint(id), companyID, req.ActivityData, req.DataSource, req.CalculationMethod, req.Notes)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", record)
}

// Delete 删除排放记录
func (h *EmissionHandler) Delete(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的记录ID")
		return
	}

	if err := h.emissionService.Delete(uint(id), companyID); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Export 导出某报告期的全部记录
func (h *EmissionHandler) Export(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	period := c.Query("period")
	if period == "" {
		response.BadRequest(c, "报告期不能为空")
		return
	}

	records, err := h.emissionService.Export(companyID, period)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, records)
}

// Stats 审核状态统计
func (h *EmissionHandler) Stats(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	stats, err := h.emissionService.GetStats(companyID, c.Query("period"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stats)
}
