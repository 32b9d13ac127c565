package rbac

import (
	"testing"

	"ghgp/internal/models"
)

func TestHasPageAccess(t *testing.T) {
	tests := []struct {
		name   string
		role   models.Role
		pageID string
		want   bool
	}{
		{"admin可访问管理面板", models.RoleAdmin, PageAdminPanel, true},
		{"admin可访问公司管理", models.RoleAdmin, PageCompanyMgmt, true},
		{"manager可访问审核页", models.RoleManager, PageVerifyData, true},
		{"manager不可访问管理面板", models.RoleManager, PageAdminPanel, false},
		{"manager不可访问用户管理", models.RoleManager, PageUserMgmt, false},
		{"普通用户可录入数据", models.RoleNormalUser, PageAddActivity, true},
		{"普通用户不可审核", models.RoleNormalUser, PageVerifyData, false},
		{"普通用户不可管理因子", models.RoleNormalUser, PageManageFactors, false},
		{"未知角色一律拒绝", models.Role("auditor"), PageDashboard, false},
		{"空角色一律拒绝", models.Role(""), PageDashboard, false},
		{"未知页面一律拒绝", models.RoleAdmin, "no_such_page", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPageAccess(tt.role, tt.pageID); got != tt.want {
				t.Errorf("HasPageAccess(%q, %q) = %v, want %v", tt.role, tt.pageID, got, tt.want)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name       string
		role       models.Role
		featureKey string
		want       bool
	}{
		{"所有角色可录入", models.RoleNormalUser, PermAddActivity, true},
		{"普通用户不可批量导入", models.RoleNormalUser, PermAddBulkEmissions, false},
		{"普通用户不可审核", models.RoleNormalUser, PermVerifyData, false},
		{"普通用户不可编辑", models.RoleNormalUser, PermEditEmissions, false},
		{"manager可审核", models.RoleManager, PermVerifyData, true},
		{"manager可批量导入", models.RoleManager, PermAddBulkEmissions, true},
		{"manager不可管理用户", models.RoleManager, PermManageUsers, false},
		{"manager不可管理公司", models.RoleManager, PermManageCompanies, false},
		{"admin可管理公司", models.RoleAdmin, PermManageCompanies, true},
		{"未知角色一律拒绝", models.Role("superuser"), PermViewData, false},
		{"未知权限键一律拒绝", models.RoleAdmin, "can_do_anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.featureKey); got != tt.want {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.featureKey, got, tt.want)
			}
		})
	}
}

func TestRoleCaseInsensitive(t *testing.T) {
	if !HasPermission(models.Role("Admin"), PermManageUsers) {
		t.Error("角色检查应当大小写不敏感")
	}
	if !HasPageAccess(models.Role("MANAGER"), PageVerifyData) {
		t.Error("页面检查应当大小写不敏感")
	}
}

func TestAccessiblePagesReturnsCopy(t *testing.T) {
	pages := AccessiblePages(models.RoleNormalUser)
	if len(pages) == 0 {
		t.Fatal("普通用户应当有可访问页面")
	}

	pages[0] = "tampered"

	again := AccessiblePages(models.RoleNormalUser)
	if again[0] == "tampered" {
		t.Error("AccessiblePages返回值被调用方篡改后污染了内部权限表")
	}
}

func TestAccessiblePagesUnknownRole(t *testing.T) {
	if pages := AccessiblePages(models.Role("ghost")); pages != nil {
		t.Errorf("未知角色应当返回nil，得到 %v", pages)
	}
}
