package handlers

import (
	"strconv"

	"ghgp/internal/middleware"
	"ghgp/internal/models"
	"ghgp/internal/services"
	"ghgp/pkg/pagination"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户管理处理器
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler() *UserHandler {
	return &UserHandler{
		userService: services.NewUserService(),
	}
}

// scopeCompanyID 非管理员只能操作本公司的用户
func scopeCompanyID(c *gin.Context) *uint {
	if middleware.GetRole(c) == models.RoleAdmin {
		// 管理员可按查询参数过滤
		if raw := c.Query("company_id"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
				companyID := uint(id)
				return &companyID
			}
		}
		return nil
	}
	if companyID, ok := middleware.GetCompanyID(c); ok {
		return &companyID
	}
	// 无公司的非管理员什么都看不到
	zero := uint(0)
	return &zero
}

// List 用户列表
func (h *UserHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	role := models.Role(c.Query("role"))
	keyword := c.Query("keyword")

	users, total, err := h.userService.GetWithFiltersAndPage(scopeCompanyID(c), role, keyword, params.Page, params.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 用户详情
func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	user, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}

	if !h.canManage(c, user) {
		response.Forbidden(c, "没有权限查看此用户")
		return
	}

	response.Success(c, user)
}

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req struct {
		Username  string      `json:"username" binding:"required"`
		Email     string      `json:"email" binding:"required"`
		Password  string      `json:"password" binding:"required"`
		Role      models.Role `json:"role" binding:"required"`
		CompanyID *uint       `json:"company_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// manager只能在本公司内创建普通用户
	if middleware.GetRole(c) == models.RoleManager {
		companyID, ok := middleware.GetCompanyID(c)
		if !ok {
			response.Forbidden(c, "用户未绑定公司")
			return
		}
		if req.Role != models.RoleNormalUser {
			response.Forbidden(c, "只能创建普通用户")
			return
		}
		req.CompanyID = &companyID
	}

	user, err := h.userService.Create(req.Username, req.Email, req.Password, req.Role, req.CompanyID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", user)
}

// Update 更新用户
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var req struct {
		Email     string      `json:"email" binding:"required"`
		Role      models.Role `json:"role" binding:"required"`
		CompanyID *uint       `json:"company_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	target, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !h.canManage(c, target) {
		response.Forbidden(c, "没有权限修改此用户")
		return
	}

	// manager不能改角色、不能把用户移出本公司
	if middleware.GetRole(c) == models.RoleManager {
		req.Role = target.Role
		req.CompanyID = target.CompanyID
	}

	user, err := h.userService.Update(uint(id), req.Email, req.Role, req.CompanyID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", user)
}

// Delete 删除用户
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	if uint(id) == middleware.GetUserID(c) {
		response.BadRequest(c, "不能删除自己")
		return
	}

	target, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !h.canManage(c, target) {
		response.Forbidden(c, "没有权限删除此用户")
		return
	}

	if err := h.userService.Delete(uint(id)); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Activate 激活用户
func (h *UserHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate 停用用户
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	if uint(id) == middleware.GetUserID(c) {
		response.BadRequest(c, "不能操作自己的账号状态")
		return
	}

	target, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !h.canManage(c, target) {
		response.Forbidden(c, "没有权限操作此用户")
		return
	}

	var user *models.User
	if active {
		user, err = h.userService.Activate(uint(id))
	} else {
		user, err = h.userService.Deactivate(uint(id))
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "操作成功", user)
}

// ResetPassword 重置用户密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var req struct {
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	target, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !h.canManage(c, target) {
		response.Forbidden(c, "没有权限操作此用户")
		return
	}

	if _, err := h.userService.ResetPassword(uint(id), req.NewPassword); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "密码重置成功", nil)
}

// Stats 用户统计（仅管理员）
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.userService.GetStats()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stats)
}

// canManage 管理范围检查：管理员全量，manager限本公司
func (h *UserHandler) canManage(c *gin.Context, target *models.User) bool {
	if middleware.GetRole(c) == models.RoleAdmin {
		return true
	}
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		return false
	}
	return target.CompanyID != nil && *target.CompanyID == companyID
}
