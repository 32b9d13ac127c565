package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams 列表接口的分页查询参数
type PageParams struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// PageInfo 随列表返回的分页元信息
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ParsePageParams 从查询串解析page/page_size
//
// 非法或越界取值一律回退：页码回退到第1页，页大小回退到默认值，
// 超过MaxPageSize的页大小截断到上限，避免一次查询拖垮列表接口。
func ParsePageParams(c *gin.Context) *PageParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &PageParams{Page: page, PageSize: pageSize}
}

// NewPageInfo 由总记录数推算分页元信息
func NewPageInfo(page, pageSize int, total int64) *PageInfo {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	return &PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// GetOffset SQL偏移量
func (p *PageParams) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit SQL行数上限
func (p *PageParams) GetLimit() int {
	return p.PageSize
}
