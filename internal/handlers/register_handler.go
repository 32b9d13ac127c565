package handlers

import (
	"fmt"

	"ghgp/internal/services"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RegisterHandler 自助注册处理器
type RegisterHandler struct {
	registrationService *services.RegistrationService
	companyService      *services.CompanyService
}

func NewRegisterHandler(registrationService *services.RegistrationService, companyService *services.CompanyService) *RegisterHandler {
	return &RegisterHandler{
		registrationService: registrationService,
		companyService:      companyService,
	}
}

// CheckUsername 检查用户名是否可用
func (h *RegisterHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		response.BadRequest(c, "用户名不能为空")
		return
	}

	available, err := h.registrationService.CheckUsernameAvailable(username)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"available": available})
}

// CheckEmail 检查邮箱是否可用
func (h *RegisterHandler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "邮箱不能为空")
		return
	}

	available, err := h.registrationService.CheckEmailAvailable(email)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"available": available})
}

// ListCompanies 列出可加入的已认证公司
func (h *RegisterHandler) ListCompanies(c *gin.Context) {
	companies, err := h.companyService.GetVerified()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, companies)
}

// JoinCompany 加入已有公司注册
func (h *RegisterHandler) JoinCompany(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required,min=3,max=50"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=6,max=50"`
		CompanyID uint   `json:"company_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		// 解析验证错误，提供更友好的提示
		if validationErr, ok := err.(validator.ValidationErrors); ok {
			errorMsg := "参数验证失败："
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "Username":
					errorMsg = "用户名不能为空，且长度在3-50个字符之间"
				case "Email":
					errorMsg = "邮箱格式不正确"
				case "Password":
					errorMsg = "密码长度必须在6-50个字符之间"
				case "CompanyID":
					errorMsg = "必须选择要加入的公司"
				default:
					errorMsg = fmt.Sprintf("字段 %s 验证失败", fieldErr.Field())
				}
				break // 只返回第一个错误
			}
			response.BadRequest(c, errorMsg)
			return
		}
		response.BadRequest(c, "请求参数格式错误")
		return
	}

	result, err := h.registrationService.RegisterWithExistingCompany(req.Username, req.Email, req.Password, req.CompanyID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", result)
}

// NewCompany 注册新公司
func (h *RegisterHandler) NewCompany(c *gin.Context) {
	var req struct {
		Username       string  `json:"username" binding:"required,min=3,max=50"`
		Email          string  `json:"email" binding:"required,email"`
		Password       string  `json:"password" binding:"required,min=6,max=50"`
		CompanyName    string  `json:"company_name" binding:"required,min=2,max=200"`
		CompanyCode    string  `json:"company_code" binding:"required,min=3,max=20"`
		IndustrySector string  `json:"industry_sector" binding:"required,max=100"`
		Address        *string `json:"address" binding:"omitempty,max=255"`
		ContactEmail   *string `json:"contact_email" binding:"omitempty,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErr, ok := err.(validator.ValidationErrors); ok {
			errorMsg := "参数验证失败："
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "Username":
					errorMsg = "用户名不能为空，且长度在3-50个字符之间"
				case "Email":
					errorMsg = "邮箱格式不正确"
				case "Password":
					errorMsg = "密码长度必须在6-50个字符之间"
				case "CompanyName":
					errorMsg = "公司名称不能为空，且长度在2-200个字符之间"
				case "CompanyCode":
					errorMsg = "公司代码不能为空，且长度在3-20个字符之间"
				case "IndustrySector":
					errorMsg = "所属行业不能为空"
				case "ContactEmail":
					errorMsg = "联系邮箱格式不正确"
				default:
					errorMsg = fmt.Sprintf("字段 %s 验证失败", fieldErr.Field())
				}
				break // 只返回第一个错误
			}
			response.BadRequest(c, errorMsg)
			return
		}
		response.BadRequest(c, "请求参数格式错误")
		return
	}

	result, err := h.registrationService.RegisterWithNewCompany(
		req.Username, req.Email, req.Password,
		req.CompanyName, req.CompanyCode, req.IndustrySector,
		req.Address, req.ContactEmail,
	)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功，公司信息等待管理员认证", result)
}
