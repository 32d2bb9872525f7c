package models

import (
	"time"

	"gorm.io/gorm"
)

// Member represents a registered member of the movement
type Member struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	MembershipID       string     `gorm:"column:membership_id;uniqueIndex;not null" json:"membership_id"`
	FullName           string     `gorm:"not null" json:"full_name"`
	Phone              string     `gorm:"size:20;not null" json:"phone"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	DOB                string     `gorm:"column:dob;size:10;not null" json:"dob"` // YYYY-MM-DD
	Gender             string     `gorm:"size:10" json:"gender"`
	StateID            uint       `gorm:"not null" json:"state_id"`
	LGAID              uint       `gorm:"column:lga_id;not null" json:"lga_id"`
	ResidentialAddress string     `gorm:"type:text" json:"residential_address"`
	Occupation         string     `json:"occupation"`
	PassportPhoto      string     `json:"passport_photo"`
	PassportPhotoThumb string     `json:"passport_photo_thumb"`
	VotersCardFront    string     `json:"voters_card_front"`
	VotersCardBack     string     `json:"voters_card_back"`
	PasswordHash       string     `gorm:"not null" json:"-"`
	VerificationToken  string     `gorm:"size:64" json:"-"`
	VerifiedAt         *time.Time `json:"verified_at"`
	Status             string     `gorm:"size:20;default:pending;index" json:"status"`
	ReviewedBy         *uint      `json:"reviewed_by"`
	ReviewedAt         *time.Time `json:"reviewed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Associations
	State State `gorm:"foreignKey:StateID" json:"state,omitempty"`
	LGA   LGA   `gorm:"foreignKey:LGAID" json:"lga,omitempty"`
}

// TableName specifies the table name for Member
func (Member) TableName() string {
	return "members"
}

// BeforeCreate hook for setting defaults
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = MemberStatusPending
	}
	return nil
}

// Member status constants
const (
	MemberStatusPending  = "pending"
	MemberStatusApproved = "approved"
	MemberStatusRejected = "rejected"
)

// IsVerified returns true if the member confirmed their email address
func (m *Member) IsVerified() bool {
	return m.VerifiedAt != nil
}

// MayApprove reports whether the member can transition to approved
func (m *Member) MayApprove() bool {
	return m.Status == MemberStatusPending || m.Status == MemberStatusRejected
}

// MayReject reports whether the member can transition to rejected
func (m *Member) MayReject() bool {
	return m.Status == MemberStatusPending
}

// MemberResponse is the JSON response format for members
type MemberResponse struct {
	ID                 uint       `json:"id"`
	MembershipID       string     `json:"membership_id"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone"`
	Email              string     `json:"email"`
	DOB                string     `json:"dob"`
	Gender             string     `json:"gender"`
	StateID            uint       `json:"state_id"`
	LGAID              uint       `json:"lga_id"`
	ResidentialAddress string     `json:"residential_address"`
	Occupation         string     `json:"occupation"`
	PassportPhoto      string     `json:"passport_photo"`
	VotersCardFront    string     `json:"voters_card_front"`
	VotersCardBack     string     `json:"voters_card_back"`
	Status             string     `json:"status"`
	Verified           bool       `json:"verified"`
	ReviewedAt         *time.Time `json:"reviewed_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ToResponse converts Member to MemberResponse
func (m *Member) ToResponse() MemberResponse {
	return MemberResponse{
		ID:                 m.ID,
		MembershipID:       m.MembershipID,
		FullName:           m.FullName,
		Phone:              m.Phone,
		Email:              m.Email,
		DOB:                m.DOB,
		Gender:             m.Gender,
		StateID:            m.StateID,
		LGAID:              m.LGAID,
		ResidentialAddress: m.ResidentialAddress,
		Occupation:         m.Occupation,
		PassportPhoto:      m.PassportPhoto,
		VotersCardFront:    m.VotersCardFront,
		VotersCardBack:     m.VotersCardBack,
		Status:             m.Status,
		Verified:           m.IsVerified(),
		ReviewedAt:         m.ReviewedAt,
		CreatedAt:          m.CreatedAt,
	}
}
