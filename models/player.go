package models

import (
	"time"

	"gorm.io/gorm"
)

// Player is a club member on the roster. Contact/profile fields are editable
// by admins (or refreshed by the membership sync worker); cumulative stats,
// rank and history are written only by event finalization and XP grants.
type Player struct {
	ID               string  `gorm:"primaryKey" json:"id"`
	ExternalMemberID string  `gorm:"uniqueIndex" json:"external_member_id,omitempty"` // membership service UUID
	Callsign         string  `gorm:"index;not null" json:"callsign"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Email            string  `json:"email,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	AvatarURL        string  `gorm:"type:text" json:"avatar_url,omitempty"`
	TeamRole         string  `json:"team_role,omitempty"` // e.g. "rifleman", "medic", "squad lead"

	// Cumulative stats, folded in at finalization
	Kills       int64 `json:"kills" gorm:"default:0"`
	Deaths      int64 `json:"deaths" gorm:"default:0"`
	Headshots   int64 `json:"headshots" gorm:"default:0"`
	GamesPlayed int64 `json:"games_played" gorm:"default:0"`
	Experience  int64 `json:"experience" gorm:"default:0"`

	// Cached rank/tier, derived from experience via the rank ladder.
	// Not recalculated until experience next changes.
	RankID   string `json:"rank_id,omitempty"`
	TierID   string `json:"tier_id,omitempty"`
	RankName string `json:"rank_name,omitempty"`
	TierName string `json:"tier_name,omitempty"`

	// Relationships
	MatchHistory          []MatchHistoryEntry    `json:"match_history,omitempty" gorm:"foreignKey:PlayerID"`
	ExperienceAdjustments []ExperienceAdjustment `json:"experience_adjustments,omitempty" gorm:"foreignKey:PlayerID"`

	Timestamps
}

// MatchHistoryEntry is an append-only per-event performance snapshot.
type MatchHistoryEntry struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	PlayerID   string    `gorm:"index;not null" json:"player_id"`
	EventID    string    `gorm:"index;not null" json:"event_id"`
	EventName  string    `json:"event_name"`
	Kills      int       `json:"kills"`
	Deaths     int       `json:"deaths"`
	Headshots  int       `json:"headshots"`
	XPEarned   int64     `json:"xp_earned"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ExperienceAdjustment is an append-only audit entry for out-of-band
// experience changes (no-show penalties, admin grants).
type ExperienceAdjustment struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PlayerID  string    `gorm:"index;not null" json:"player_id"`
	Delta     int64     `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"type:text" json:"reason"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
