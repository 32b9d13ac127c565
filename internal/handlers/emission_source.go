package handlers

import (
	"strconv"

	"ghgp/internal/middleware"
	"ghgp/internal/models"
	"ghgp/internal/services"
	"ghgp/pkg/pagination"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EmissionSourceHandler 排放源目录处理器
type EmissionSourceHandler struct {
	sourceService *services.EmissionSourceService
}

func NewEmissionSourceHandler() *EmissionSourceHandler {
	return &EmissionSourceHandler{
		sourceService: services.NewEmissionSourceService(),
	}
}

// Scopes 范围列表
func (h *EmissionSourceHandler) Scopes(c *gin.Context) {
	scopes, err := h.sourceService.GetScopes()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, scopes)
}

// Categories 类别列表
func (h *EmissionSourceHandler) Categories(c *gin.Context) {
	categories, err := h.sourceService.GetCategories()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, categories)
}

// ListForCompany 本公司可选的排放源
func (h *EmissionSourceHandler) ListForCompany(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	sources, err := h.sourceService.ListForCompany(companyID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, sources)
}

// ListForManagement 管理视角的排放源列表
func (h *EmissionSourceHandler) ListForManagement(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	sourceType := c.Query("source_type")
	keyword := c.Query("keyword")

	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			categoryID = &v
		}
	}

	// 管理员看全量，manager限定在本公司可见范围
	var companyID *uint
	if middleware.GetRole(c) != models.RoleAdmin {
		id, ok := middleware.GetCompanyID(c)
		if !ok {
			response.Forbidden(c, "用户未绑定公司")
			return
		}
		companyID = &id
	}

	sources, total, err := h.sourceService.ListForManagement(companyID, sourceType, keyword, categoryID, params.Page, params.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, sources, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 排放源详情
func (h *EmissionSourceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的排放源ID")
		return
	}

	source, err := h.sourceService.GetByID(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, source)
}

type customSourceRequest struct {
	CategoryID          uint            `json:"category_id" binding:"required"`
	SourceName          string          `json:"source_name" binding:"required"`
	EmissionFactor      decimal.Decimal `json:"emission_factor" binding:"required"`
	Unit                string          `json:"unit" binding:"required"`
	Description         string          `json:"description"`
	DataSourceReference string          `json:"data_source_reference"`
	Region              string          `json:"region"`
	ReferenceYear       *int            `json:"reference_year"`
}

// CreateCustom 创建自建排放源
func (h *EmissionSourceHandler) CreateCustom(c *gin.Context) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	var req customSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	source, err := h.sourceService.CreateCustomSource(
		companyID, middleware.GetUserID(c), req.CategoryID,
		req.SourceName, req.EmissionFactor, req.Unit,
		req.Description, req.DataSourceReference, req.Region, req.ReferenceYear,
	)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", source)
}

// UpdateCustom 更新自建排放源
func (h *EmissionSourceHandler) UpdateCustom(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的排放源ID")
		return
	}

	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	var req struct {
		SourceName          string          `json:"source_name" binding:"required"`
		EmissionFactor      decimal.Decimal `json:"emission_factor" binding:"required"`
		Unit                string          `json:"unit" binding:"required"`
		Description         string          `json:"description"`
		DataSourceReference string          `json:"data_source_reference"`
		ChangeReason        string          `json:"change_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	source, err := h.sourceService.UpdateCustomSource(
		uint(id), companyID, middleware.GetUserID(c),
		req.SourceName, req.EmissionFactor, req.Unit,
		req.Description, req.DataSourceReference, req.ChangeReason,
	)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", source)
}

// DeleteCustom 删除自建排放源
func (h *EmissionSourceHandler) DeleteCustom(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的排放源ID")
		return
	}

	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		response.Forbidden(c, "用户未绑定公司")
		return
	}

	if err := h.sourceService.Delete(uint(id), companyID); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// SetActive 启用/停用排放源（管理员）
func (h *EmissionSourceHandler) SetActive(c *gin.Context) {
	h.setFlag(c, "active")
}

// SetVisible 设置界面可见性（管理员）
func (h *EmissionSourceHandler) SetVisible(c *gin.Context) {
	h.setFlag(c, "visible")
}

func (h *EmissionSourceHandler) setFlag(c *gin.Context, flag string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的排放源ID")
		return
	}

	var req struct {
		Value *bool `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	var source *models.EmissionSource
	if flag == "active" {
		source, err = h.sourceService.SetActive(uint(id), *req.Value)
	} else {
		source, err = h.sourceService.SetVisible(uint(id), *req.Value)
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "操作成功", source)
}

// BulkSetFlags 批量设置标志（管理员）
func (h *EmissionSourceHandler) BulkSetFlags(c *gin.Context) {
	var req struct {
		IDs      []uint `json:"ids" binding:"required"`
		IsActive *bool  `json:"is_active"`
		Visible  *bool  `json:"is_visible_in_ui"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.sourceService.BulkSetFlags(req.IDs, req.IsActive, req.Visible)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "操作成功", gin.H{"updated": updated})
}

// Usage 排放源引用统计
func (h *EmissionSourceHandler) Usage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的排放源ID")
		return
	}

	count, err := h.sourceService.UsageCount(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"usage_count": count})
}

// History 排放源因子变更历史
func (h *EmissionSourceHandler) History(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的排放源ID")
		return
	}

	history, err := h.sourceService.GetHistory(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, history)
}
