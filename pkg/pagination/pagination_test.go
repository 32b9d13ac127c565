package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"正常参数", "page=2&page_size=20", 2, 20},
		{"缺省值", "", DefaultPage, DefaultPageSize},
		{"非法页码回退默认", "page=abc", DefaultPage, DefaultPageSize},
		{"负数页码回退默认", "page=-1", DefaultPage, DefaultPageSize},
		{"超大页大小被截断", "page_size=500", DefaultPage, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := ParsePageParams(newTestContext(tt.query))
			if params.Page != tt.wantPage || params.PageSize != tt.wantPageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d",
					params.Page, params.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(2, 10, 25)

	if info.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", info.TotalPages)
	}
	if !info.HasNext || !info.HasPrev {
		t.Errorf("第2页共3页应当前后都有页: %+v", info)
	}

	first := NewPageInfo(1, 10, 5)
	if first.TotalPages != 1 || first.HasNext || first.HasPrev {
		t.Errorf("单页结果分页信息错误: %+v", first)
	}
}

func TestGetOffsetAndLimit(t *testing.T) {
	p := &PageParams{Page: 3, PageSize: 15}
	if p.GetOffset() != 30 {
		t.Errorf("GetOffset = %d, want 30", p.GetOffset())
	}
	if p.GetLimit() != 15 {
		t.Errorf("GetLimit = %d, want 15", p.GetLimit())
	}
}
