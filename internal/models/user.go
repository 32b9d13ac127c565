package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role 用户角色
type Role string

// 角色常量
const (
	RoleAdmin      Role = "admin"       // 平台管理员
	RoleManager    Role = "manager"     // 公司管理者
	RoleNormalUser Role = "normal_user" // 普通用户
)

// Valid 角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleNormalUser:
		return true
	default:
		return false
	}
}

// User 用户模型
type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"unique;not null;size:50;index"`
	Email        string     `json:"email" gorm:"unique;not null;size:100;index"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	Role         Role       `json:"role" gorm:"not null;size:20;default:'normal_user'"`
	CompanyID    *uint      `json:"company_id" gorm:"index"` // 未分配公司时为空
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// SetPassword 设置密码 - 数据操作方法
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码 - 数据操作方法
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
