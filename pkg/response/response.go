package response

import (
	"net/http"

	"ghgp/pkg/errors"
	"ghgp/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response 统一返回格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ========== 基础返回方法 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 成功返回（自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      errors.CodeSuccess,
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// Error 通用错误返回
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, errors.CodeConflict, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}

// ========== 业务错误映射 ==========

// FromError 根据业务错误类别映射到对应错误码
func FromError(c *gin.Context, err error) {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		BadRequest(c, err.Error())
	case errors.KindDuplicate:
		Conflict(c, err.Error())
	case errors.KindPermissionDenied:
		Forbidden(c, err.Error())
	case errors.KindInvalidStateTransition:
		Conflict(c, err.Error())
	case errors.KindNotFound:
		NotFound(c, err.Error())
	default:
		ServerError(c, "操作失败，请稍后重试")
	}
}
