package models

// GearItem is a rental catalog entry (replicas, masks, chronographs, BB
// allowances). RentalPrice is the catalog price; events may override it via
// RentalPriceOverrides.
type GearItem struct {
	ID          string  `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	RentalPrice float64 `gorm:"default:0" json:"rental_price"`
	PhotoURL    string  `gorm:"type:text" json:"photo_url,omitempty"`
	Available   bool    `gorm:"default:true" json:"available"`

	Timestamps
}
