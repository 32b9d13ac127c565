package rbac

import (
	"strings"

	"ghgp/internal/models"
)

// 页面标识常量
const (
	PageDashboard       = "dashboard"
	PageAddActivity     = "add_activity"
	PageViewData        = "view_data"
	PageVerifyData      = "verify_data"
	PageAdminPanel      = "admin_panel"
	PageUserMgmt        = "user_management"
	PageCompanyMgmt     = "company_management"
	PageDisclosure      = "sedg_disclosure"
	PageQuestionnaire   = "esg_questionnaire"
	PageManageFactors   = "manage_emission_factors"
)

// 功能权限键常量
const (
	PermAddActivity      = "can_add_activity"
	PermAddBulkEmissions = "can_add_bulk_emissions"
	PermViewData         = "can_view_data"
	PermEditEmissions    = "can_edit_emissions"
	PermDeleteEmissions  = "can_delete_emissions"
	PermVerifyData       = "can_verify_data"
	PermGenerateReports  = "can_generate_reports"
	PermManageUsers      = "can_manage_users"
	PermManageCompanies  = "can_manage_companies"
	PermViewAllCompanies = "can_view_all_companies"
	PermExportData       = "can_export_data"
	PermManageFactors    = "can_manage_factors"
)

// pagePermissions 角色 -> 可访问页面
//
// 每个角色的允许集合独立完整列出，检查函数不做任何角色继承推导。
var pagePermissions = map[models.Role][]string{
	models.RoleAdmin: {
		PageDashboard,
		PageAddActivity,
		PageViewData,
		PageVerifyData,
		PageAdminPanel,
		PageUserMgmt,
		PageCompanyMgmt,
		PageDisclosure,
		PageQuestionnaire,
		PageManageFactors,
	},
	models.RoleManager: {
		PageDashboard,
		PageAddActivity,
		PageViewData,
		PageVerifyData,
		PageDisclosure,
		PageQuestionnaire,
		PageManageFactors,
	},
	models.RoleNormalUser: {
		PageDashboard,
		PageAddActivity,
		PageViewData,
		PageQuestionnaire,
	},
}

// featurePermissions 功能权限键 -> 允许的角色
var featurePermissions = map[string][]models.Role{
	PermAddActivity:      {models.RoleAdmin, models.RoleManager, models.RoleNormalUser},
	PermAddBulkEmissions: {models.RoleAdmin, models.RoleManager},
	PermViewData:         {models.RoleAdmin, models.RoleManager, models.RoleNormalUser},
	PermEditEmissions:    {models.RoleAdmin, models.RoleManager},
	PermDeleteEmissions:  {models.RoleAdmin, models.RoleManager},
	PermVerifyData:       {models.RoleAdmin, models.RoleManager},
	PermGenerateReports:  {models.RoleAdmin, models.RoleManager},
	PermManageUsers:      {models.RoleAdmin},
	PermManageCompanies:  {models.RoleAdmin},
	PermViewAllCompanies: {models.RoleAdmin},
	PermExportData:       {models.RoleAdmin, models.RoleManager},
	PermManageFactors:    {models.RoleAdmin, models.RoleManager},
}

// normalizeRole 角色字符串归一化（大小写不敏感）
func normalizeRole(role models.Role) models.Role {
	return models.Role(strings.ToLower(string(role)))
}

// HasPageAccess 检查角色是否可访问页面，未知角色一律拒绝
func HasPageAccess(role models.Role, pageID string) bool {
	pages, ok := pagePermissions[normalizeRole(role)]
	if !ok {
		return false
	}
	for _, p := range pages {
		if p == pageID {
			return true
		}
	}
	return false
}

// HasPermission 检查角色是否拥有功能权限，未知角色或未知权限键一律拒绝
func HasPermission(role models.Role, featureKey string) bool {
	roles, ok := featurePermissions[featureKey]
	if !ok {
		return false
	}
	r := normalizeRole(role)
	for _, allowed := range roles {
		if allowed == r {
			return true
		}
	}
	return false
}

// AccessiblePages 返回角色可访问的页面列表（拷贝，防止调用方改表）
func AccessiblePages(role models.Role) []string {
	pages, ok := pagePermissions[normalizeRole(role)]
	if !ok {
		return nil
	}
	out := make([]string, len(pages))
	copy(out, pages)
	return out
}
