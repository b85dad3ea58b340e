package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is created exactly once a transaction terminates successfully.
// transaction_id is unique, enforcing the at-most-one-booking-per-transaction
// invariant at the storage layer.
type Booking struct {
	TransactionID      string          `gorm:"type:varchar(64);primaryKey" json:"transaction_id"`
	UserName           string          `gorm:"type:varchar(255);not null" json:"user_name"`
	UserGender         string          `gorm:"type:varchar(10);not null" json:"user_gender"`
	UserDOB            string          `gorm:"type:date;not null" json:"user_dob"`
	ServiceIDs         IntSlice        `gorm:"type:jsonb;not null" json:"service_ids"`
	BasePrice          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
	DiscountApplied    bool            `gorm:"not null;default:false" json:"discount_applied"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percentage"`
	FinalPrice         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"final_price"`
	ReferenceID        string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"reference_id"`
	Status             string          `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Booking) TableName() string {
	return "bookings"
}
