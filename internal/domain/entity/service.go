package entity

import "github.com/shopspring/decimal"

// ServiceGender constrains which patient gender a catalog service may be
// booked for.
type ServiceGender string

const (
	ServiceGenderMale   ServiceGender = "male"
	ServiceGenderFemale ServiceGender = "female"
	ServiceGenderBoth   ServiceGender = "both"
)

// Compatible reports whether a patient of the given gender may book this service.
func (g ServiceGender) Compatible(patientGender string) bool {
	return g == ServiceGenderBoth || string(g) == patientGender
}

// Service is a read-only catalog entry. The core never edits it; it is
// seeded once via migration.
type Service struct {
	ID        int             `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Gender    ServiceGender   `gorm:"type:varchar(10);not null" json:"gender"`
	BasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
}

func (Service) TableName() string {
	return "services"
}
