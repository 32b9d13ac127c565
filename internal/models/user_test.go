package models

import "testing"

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleNormalUser} {
		if !r.Valid() {
			t.Errorf("%q 应当是合法角色", r)
		}
	}
	for _, r := range []Role{"", "root", "Admin", "superuser"} {
		if r.Valid() {
			t.Errorf("%q 不应当是合法角色", r)
		}
	}
}

func TestUserPassword(t *testing.T) {
	user := &User{Username: "tester"}

	if err := user.SetPassword("secret123"); err != nil {
		t.Fatalf("SetPassword失败: %v", err)
	}
	if user.PasswordHash == "secret123" {
		t.Fatal("密码不应明文存储")
	}

	if !user.CheckPassword("secret123") {
		t.Error("正确密码校验失败")
	}
	if user.CheckPassword("wrong") {
		t.Error("错误密码不应通过校验")
	}
}
