package entity

import "time"

// TransactionEvent is one row of the append-only transaction_events log.
// Never mutated or deleted once written.
type TransactionEvent struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID string    `gorm:"type:varchar(64);not null;index:idx_tx_events_tx;uniqueIndex:idx_tx_events_dedup" json:"transaction_id"`
	EventType     EventType `gorm:"type:varchar(64);not null;uniqueIndex:idx_tx_events_dedup" json:"event_type"`
	EventData     JSON      `gorm:"type:jsonb" json:"event_data,omitempty"`
	Timestamp     time.Time `gorm:"not null;uniqueIndex:idx_tx_events_dedup" json:"timestamp"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TransactionEvent) TableName() string {
	return "transaction_events"
}

// TransactionState is the Orchestrator's per-transaction summary: the
// event_type of the most recently appended event, plus the
// compensation_emitted flag used to keep compensation idempotent under
// at-least-once delivery.
type TransactionState struct {
	TransactionID       string    `gorm:"type:varchar(64);primaryKey" json:"transaction_id"`
	CurrentState        EventType `gorm:"type:varchar(64);not null" json:"current_state"`
	CompensationEmitted bool      `gorm:"not null;default:false" json:"compensation_emitted"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TransactionState) TableName() string {
	return "transaction_state"
}
