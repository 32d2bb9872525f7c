package models

// State represents a Nigerian state. Reference data, seeded out-of-band.
type State struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;index" json:"name"`
	Code string `gorm:"size:5;not null" json:"code"`
}

// TableName specifies the table name for State
func (State) TableName() string {
	return "states"
}

// LGA represents a Local Government Area within a state
type LGA struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null;index" json:"name"`
	StateID uint   `gorm:"not null;index" json:"-"`

	State State `gorm:"foreignKey:StateID" json:"-"`
}

// TableName specifies the table name for LGA
func (LGA) TableName() string {
	return "lgas"
}
