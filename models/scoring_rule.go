package models

import "time"

// Well-known scoring rule ids. Admin-defined custom rules share the same
// table and are resolved the same way.
const (
	RuleKill     = "kill"
	RuleHeadshot = "headshot"
	RuleDeath    = "death"
	RuleNoShow   = "no_show"
)

// ScoringRule maps a rule id to an experience delta. Positive = reward,
// negative = penalty. Events may override individual values without touching
// the global table.
type ScoringRule struct {
	ID          string    `gorm:"primaryKey" json:"id"` // e.g. "kill", "headshot", "no_show"
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Experience  int64     `gorm:"not null" json:"experience"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// DefaultScoringRules seeds the table on first boot.
var DefaultScoringRules = []ScoringRule{
	{ID: RuleKill, Name: "Kill", Description: "Confirmed elimination", Experience: 10},
	{ID: RuleHeadshot, Name: "Headshot", Description: "Confirmed headshot elimination", Experience: 25},
	{ID: RuleDeath, Name: "Death", Description: "Player was eliminated", Experience: -5},
	{ID: RuleNoShow, Name: "No-show", Description: "Signed up but never checked in", Experience: -15},
}
