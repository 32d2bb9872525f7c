package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Member       MemberRepository
	Reference    ReferenceRepository
	Admin        AdminRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Member:       NewMemberRepository(db),
		Reference:    NewReferenceRepository(db),
		Admin:        NewAdminRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
