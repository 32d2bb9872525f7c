package models

import (
	"time"
)

// AuditLog represents an append-only system audit entry. Rows are never
// updated or deleted by the application.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Actor     string    `gorm:"size:255;not null" json:"actor"`      // email of the acting member/admin
	ActorType string    `gorm:"size:20;not null" json:"actor_type"`  // member, admin, system
	Action    string    `gorm:"size:50;not null;index" json:"action"` // registration, approve, reject, login, ...
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Actor type constants
const (
	ActorTypeMember = "member"
	ActorTypeAdmin  = "admin"
	ActorTypeSystem = "system"
)
