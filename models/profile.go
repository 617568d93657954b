package models

import "time"

const ProfileTable = "abl_profiles"

const (
	RoleMember  = "member"
	RoleStaff   = "staff"
	RoleManager = "manager"
)

// Profile 登录过的用户档案，邮箱经魔法链接验证后创建
type Profile struct {
	ID    string `gorm:"type:uuid;primaryKey" json:"id"`
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"` // 统一小写
	Name  string `gorm:"size:200" json:"name"`
	Role  string `gorm:"size:20;not null;default:'member'" json:"role"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Profile) TableName() string { return ProfileTable }

func (p *Profile) IsStaff() bool { return p.Role == RoleStaff || p.Role == RoleManager }
