package models

import "time"

// Invite 注册邀请：凭 token 注册，过期 / 已用即失效。
// Role 决定受邀人注册后的角色（运维邀请管理员用）。
type Invite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"index;size:255;not null" json:"email"`
	Token     string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Role      Role      `gorm:"size:16;not null;default:'MEMBER'" json:"role"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedBy string     `gorm:"size:255" json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Invite) TableName() string { return "lib_invites" }

func (iv *Invite) Usable(now time.Time) bool {
	return iv.UsedAt == nil && now.Before(iv.ExpiresAt)
}
