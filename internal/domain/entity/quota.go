package entity

import "time"

// QuotaCounter is the durable, per-calendar-day count of acquired discount
// slots. The enforcement point is the Redis Lua script in
// internal/saga/quota.go; this row is the audit copy written once the
// Redis reservation has already succeeded.
type QuotaCounter struct {
	Date      string `gorm:"type:varchar(10);primaryKey" json:"date"`
	Used      int    `gorm:"not null;default:0" json:"used"`
	UpdatedAt time.Time
}

func (QuotaCounter) TableName() string {
	return "quota_counters"
}

// QuotaAllocation records one transaction's claim on a day's discount
// quota. Invariant: for every date D, used(D) equals the count of
// allocations for D where Released is false.
type QuotaAllocation struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`
	Date          string    `gorm:"type:varchar(10);not null;index" json:"date"`
	Released      bool      `gorm:"not null;default:false" json:"released"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (QuotaAllocation) TableName() string {
	return "quota_allocations"
}
