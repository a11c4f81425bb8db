package model

import (
	"time"
)

// User 用户模型
type User struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`

	Role UserRole `json:"role" gorm:"default:'customer'"`

	// 钱包绑定
	WalletAddress string `json:"wallet_address" gorm:"index"`
	WalletNonce   string `json:"-"` // 待签名的随机数，签名验证后轮换
}

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"     // 平台管理员
	UserRoleOrganizer UserRole = "organizer" // 活动主办方
	UserRoleCustomer  UserRole = "customer"  // 普通用户
)

// TableName 自定义表名
func (User) TableName() string {
	return "user"
}
