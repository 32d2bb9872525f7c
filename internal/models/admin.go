package models

import (
	"time"
)

// AdminUser represents a staff account that reviews applications
type AdminUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `gorm:"size:20;default:viewer" json:"role"`
	Status       string    `gorm:"size:20;default:active" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for AdminUser
func (AdminUser) TableName() string {
	return "admin_users"
}

// Admin role constants, ordered viewer < editor < super
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleSuper  = "super"
)

// Admin status constants
const (
	AdminStatusActive   = "active"
	AdminStatusInactive = "inactive"
)

// roleRank orders admin roles by privilege
var roleRank = map[string]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleSuper:  3,
}

// IsActive returns true if the admin account can log in
func (a *AdminUser) IsActive() bool {
	return a.Status == AdminStatusActive
}

// HasRole returns true if the admin's role is at least the required role
func (a *AdminUser) HasRole(required string) bool {
	return roleRank[a.Role] >= roleRank[required]
}

// RoleAtLeast compares two role names by privilege rank
func RoleAtLeast(role, required string) bool {
	return roleRank[role] >= roleRank[required]
}

// AdminResponse is the JSON response format for admin users
type AdminResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts AdminUser to AdminResponse
func (a *AdminUser) ToResponse() AdminResponse {
	return AdminResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}

// RefreshToken represents a JWT refresh token for an admin session
type RefreshToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AdminUserID uint       `gorm:"not null;index" json:"admin_user_id"`
	Token       string     `gorm:"uniqueIndex" json:"token"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`

	AdminUser AdminUser `gorm:"foreignKey:AdminUserID" json:"-"`
}

// TableName specifies the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired returns true if the refresh token has expired
func (r *RefreshToken) IsExpired() bool {
	if r.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*r.ExpiresAt)
}
