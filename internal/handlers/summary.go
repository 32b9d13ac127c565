package handlers

import (
	"ghgp/internal/middleware"
	"ghgp/internal/services"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 排放汇总处理器
type SummaryHandler struct {
	summaryService *services.SummaryService
}

func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{
		summaryService: services.NewSummaryService(),
	}
}

// Get 公司某报告期的排放汇总
func (h *SummaryHandler) Get(c *gin.Context) {
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

	summary, err := h.summaryService.GetSummary(companyID, period)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, summary)
}

// SourceBreakdown 按排放源的分项汇总
func (h *SummaryHandler) SourceBreakdown(c *gin.Context) {
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

	items, err := h.summaryService.GetSourceBreakdown(companyID, period)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, items)
}
