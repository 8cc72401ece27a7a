package models

import "time"

// Ledger transaction types
const (
	TransactionEventRevenue  = "event_revenue"
	TransactionRentalRevenue = "rental_revenue"
	TransactionOther         = "other"
)

// Transaction is an immutable ledger record, generated exclusively by event
// finalization. Never mutated or deleted; corrections are new compensating
// transactions. IDs are deterministic (event+player[+item]) so re-finalizing
// upserts the same record instead of duplicating it.
type Transaction struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"index;not null" json:"date"`
	Type        string    `gorm:"index;not null" json:"type"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Description string    `gorm:"type:text" json:"description"`

	EventID    string `gorm:"index" json:"event_id,omitempty"`
	PlayerID   string `gorm:"index" json:"player_id,omitempty"`
	GearItemID string `gorm:"index" json:"gear_item_id,omitempty"`

	// Payment status of the attendee at finalization time (snapshot)
	PaymentStatus string `json:"payment_status,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// EventFeeTransactionID returns the deterministic id for an event fee ledger
// record.
func EventFeeTransactionID(eventID, playerID string) string {
	return "txn_" + eventID + "_" + playerID
}

// RentalTransactionID returns the deterministic id for a rental ledger record.
func RentalTransactionID(eventID, playerID, gearItemID string) string {
	return "txn_" + eventID + "_" + playerID + "_" + gearItemID
}
