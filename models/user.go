package models

import (
	"time"
)

const UserTable = "lib_users"

// Role 用户角色：普通读者 MEMBER / 管理员 ADMIN
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// User 使用 UUID 字符串作为主键（WebAuthn userHandle 用时转 []byte）
// Email 即登录名，唯一；PasswordHash 可空（仅用 Passkey 的账号没有密码）
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Email       string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	DisplayName string `gorm:"size:255;not null" json:"displayName"`
	Role        Role   `gorm:"size:16;not null;default:'MEMBER'" json:"role"`

	PasswordHash *string `gorm:"size:100" json:"-"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`  // 前端不直接展示
	LastLoginUA string     `gorm:"size:255" json:"-"` // 可选

	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Credentials []Credential
}

func (User) TableName() string {
	return UserTable
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Credential 为每个注册的 Passkey 存档
// 注意：CredentialID / PublicKey 为二进制，GORM 在 Postgres 下可用 bytea
// AAGUID 也是 16 字节

type Credential struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;index" json:"userId"`
	CredentialID    []byte    `gorm:"uniqueIndex" json:"credentialId"`
	PublicKey       []byte    `json:"publicKey"`
	AttestationType string    `gorm:"size:64" json:"attestationType"`
	AAGUID          []byte    `gorm:"type:bytea" json:"aaguid"`
	SignCount       uint32    `json:"signCount"`
	CloneWarning    bool      `json:"cloneWarning"`
	BackupEligible  bool      `json:"backupEligible"`
	BackupState     bool      `json:"backupState"`
	TransportsJSON  string    `gorm:"type:text" json:"transportsJson"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	LastUsedAt *time.Time `gorm:"index" json:"lastUsedAt,omitempty"`
}
