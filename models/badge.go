package models

import "time"

// BadgeType is a patch/achievement definition. Threshold keys reference
// cumulative player stats (e.g. {"games_played": 10}, {"kills": 100}).
type BadgeType struct {
	ID          string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code        string           `gorm:"uniqueIndex;not null" json:"code"` // e.g. "FIRST_GAME", "CENTURION"
	Name        string           `gorm:"not null" json:"name"`
	Description string           `json:"description"`
	IconURL     string           `gorm:"type:text" json:"icon_url,omitempty"`
	Rarity      string           `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	Threshold   map[string]int64 `gorm:"type:jsonb;serializer:json" json:"threshold"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// PlayerBadge is an awarded instance.
type PlayerBadge struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PlayerID    string    `gorm:"index;not null" json:"player_id"`
	BadgeTypeID string    `gorm:"index;not null" json:"badge_type_id"`
	EventID     string    `gorm:"index" json:"event_id,omitempty"` // event that triggered the award, if any
	AwardedAt   time.Time `json:"awarded_at" gorm:"autoCreateTime"`
}

// BadgeTriggers seed the badge table on first boot.
var BadgeTriggers = []BadgeType{
	{
		Code:        "FIRST_GAME",
		Name:        "Boots On The Ground",
		Description: "Attended your first game day",
		Rarity:      "common",
		Threshold:   map[string]int64{"games_played": 1},
	},
	{
		Code:        "VETERAN_25",
		Name:        "Veteran",
		Description: "Attended 25 game days",
		Rarity:      "rare",
		Threshold:   map[string]int64{"games_played": 25},
	},
	{
		Code:        "CENTURION",
		Name:        "Centurion",
		Description: "100 confirmed kills",
		Rarity:      "epic",
		Threshold:   map[string]int64{"kills": 100},
	},
	{
		Code:        "MARKSMAN",
		Name:        "Marksman",
		Description: "25 confirmed headshots",
		Rarity:      "rare",
		Threshold:   map[string]int64{"headshots": 25},
	},
}
