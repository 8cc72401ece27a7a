package models

import "time"

// Rank is a named progression band containing tiers. The global tier ladder
// is the union of every rank's tiers sorted by minimum experience.
type Rank struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	SortOrder int       `gorm:"column:sort_order;default:0" json:"sort_order"`
	IconURL   string    `gorm:"type:text" json:"icon_url,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationship: deleting a rank removes its tiers
	Tiers []Tier `json:"tiers,omitempty" gorm:"foreignKey:RankID;constraint:OnDelete:CASCADE"`
}

// Tier is an experience-threshold sub-level within a rank. MinExperience is
// an inclusive lower bound.
type Tier struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	RankID        string    `gorm:"index;not null" json:"rank_id"`
	Name          string    `gorm:"not null" json:"name"`
	MinExperience int64     `gorm:"not null;default:0" json:"min_experience"`
	Perks         string    `gorm:"type:text" json:"perks,omitempty"`
	IconURL       string    `gorm:"type:text" json:"icon_url,omitempty"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UnrankedTier is the sentinel returned when no tiers exist anywhere in the
// ladder.
var UnrankedTier = Tier{ID: "unranked", Name: "Unranked", MinExperience: 0}
