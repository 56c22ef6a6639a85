package models

import "time"

// 审计动作。流转类两种，管理类记录目录与账号变更。
const (
	AuditBorrow     = "BORROW"
	AuditReturn     = "RETURN"
	AuditBookCreate = "BOOK_CREATE"
	AuditBookUpdate = "BOOK_UPDATE"
	AuditBookResize = "BOOK_RESIZE"
	AuditBookDelete = "BOOK_DELETE"
	AuditRoleChange = "ROLE_CHANGE"
)

// AuditLog 流通 / 管理操作的审计流水，只追加不修改。
// BookID 用裸字符串不建外键，书删了流水还在。
type AuditLog struct {
	ID         string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action     string    `gorm:"size:32;not null;index" json:"action"`
	ActorID    string    `gorm:"type:uuid;index" json:"actorId"`
	ActorEmail string    `gorm:"size:255" json:"actorEmail"`
	BookID     *string   `gorm:"type:uuid" json:"bookId,omitempty"`
	SubjectID  *string   `gorm:"type:uuid" json:"subjectId,omitempty"`
	Detail     *string   `json:"detail,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (AuditLog) TableName() string { return "lib_audit_log" }
