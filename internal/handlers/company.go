package handlers

import (
	"strconv"

	"ghgp/internal/models"
	"ghgp/internal/services"
	"ghgp/pkg/pagination"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
)

// CompanyHandler 公司管理处理器
type CompanyHandler struct {
	companyService *services.CompanyService
}

func NewCompanyHandler() *CompanyHandler {
	return &CompanyHandler{
		companyService: services.NewCompanyService(),
	}
}

// List 公司列表
func (h *CompanyHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	status := models.CompanyStatus(c.Query("status"))
	keyword := c.Query("keyword")

	companies, total, err := h.companyService.GetWithFiltersAndPage(status, keyword, params.Page, params.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, companies, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 公司详情
func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的公司ID")
		return
	}

	company, err := h.companyService.GetByID(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, company)
}

// Create 创建公司
func (h *CompanyHandler) Create(c *gin.Context) {
	var req struct {
		CompanyName    string  `json:"company_name" binding:"required"`
		CompanyCode    string  `json:"company_code" binding:"required"`
		IndustrySector string  `json:"industry_sector" binding:"required"`
		Address        *string `json:"address"`
		ContactEmail   *string `json:"contact_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	company, err := h.companyService.Create(req.CompanyName, req.CompanyCode, req.IndustrySector, req.Address, req.ContactEmail)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", company)
}

// Update 更新公司信息
func (h *CompanyHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的公司ID")
		return
	}

	var req struct {
		CompanyName    string  `json:"company_name" binding:"required"`
		IndustrySector string  `json:"industry_sector" binding:"required"`
		Address        *string `json:"address"`
		ContactEmail   *string `json:"contact_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	company, err := h.companyService.Update(uint(id), req.CompanyName, req.IndustrySector, req.Address, req.ContactEmail)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", company)
}

// Delete 删除公司
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的公司ID")
		return
	}

	if err := h.companyService.Delete(uint(id)); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Verify 通过公司认证
func (h *CompanyHandler) Verify(c *gin.Context) {
	h.setVerification(c, true)
}

// Reject 驳回公司认证
func (h *CompanyHandler) Reject(c *gin.Context) {
	h.setVerification(c, false)
}

func (h *CompanyHandler) setVerification(c *gin.Context, approve bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的公司ID")
		return
	}

	var company *models.Company
	if approve {
		company, err = h.companyService.Verify(uint(id))
	} else {
		company, err = h.companyService.Reject(uint(id))
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "操作成功", company)
}

// Stats 公司统计
func (h *CompanyHandler) Stats(c *gin.Context) {
	stats, err := h.companyService.GetStats()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stats)
}
