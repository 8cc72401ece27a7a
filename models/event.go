package models

import (
	"time"
)

const (
	EventStatusDraft     = "draft"
	EventStatusUpcoming  = "upcoming"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// Attendee payment states
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaidCard = "paid_card"
	PaymentPaidCash = "paid_cash"
)

// IsPaidStatus reports whether a payment status counts as paid (any variant).
func IsPaidStatus(status string) bool {
	return status == PaymentPaidCard || status == PaymentPaidCash
}

// LiveStat holds the per-player in-game counters collected while an event is
// open. Absent fields read as 0; finalization folds these into the player's
// cumulative stats exactly once.
type LiveStat struct {
	Kills     int `json:"kills"`
	Deaths    int `json:"deaths"`
	Headshots int `json:"headshots"`
}

// LiveStatMap keys by player ID. Entries for players no longer on the
// attendee list are retained but ignored by finalization.
type LiveStatMap map[string]LiveStat

// Event is a scheduled game day. Mutated through the signup/check-in
// lifecycle; logically immutable once status = completed.
type Event struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"uniqueIndex"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	FieldRules  string    `json:"field_rules"`
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	EndTime     time.Time `json:"end_time"`

	EntryFee       float64 `json:"entry_fee" gorm:"default:0"`
	BaseExperience int64   `json:"base_experience" gorm:"default:0"` // participation XP for everyone checked in
	MaxAttendees   int     `json:"max_attendees" gorm:"default:0"`   // 0 = unlimited
	MainPhotoURL   string  `json:"main_photo_url"`

	// Per-event scoring/pricing overrides (rule id -> XP delta, gear id -> price)
	ExperienceOverrides  map[string]int64   `json:"experience_overrides,omitempty" gorm:"type:jsonb;serializer:json"`
	RentalPriceOverrides map[string]float64 `json:"rental_price_overrides,omitempty" gorm:"type:jsonb;serializer:json"`

	// Gear and badges eligible for this event
	EligibleGearIDs  []string `json:"eligible_gear_ids,omitempty" gorm:"type:jsonb;serializer:json"`
	EligibleBadgeIDs []string `json:"eligible_badge_ids,omitempty" gorm:"type:jsonb;serializer:json"`

	// Live counters, populated while the event is open and snapshotted
	// permanently at finalization.
	LiveStats LiveStatMap `json:"live_stats,omitempty" gorm:"type:jsonb;serializer:json"`

	Status          string     `json:"status" gorm:"default:'draft'"`
	PublishSchedule *time.Time `json:"publish_schedule,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty" gorm:"index"`
	FinalizedAt     *time.Time `json:"finalized_at,omitempty"`

	// Relationships
	Attendees []Attendee `json:"attendees,omitempty" gorm:"foreignKey:EventID"`

	// Calculated fields (not stored in DB)
	SignupCount   int64 `json:"signup_count,omitempty" gorm:"-"`
	AttendeeCount int64 `json:"attendee_count,omitempty" gorm:"-"`

	Timestamps
}

// Attendee is a checked-in, billable participant. Exists only while the
// player is checked in; check-out removes it and recreates the signup.
type Attendee struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	EventID       string    `json:"event_id" gorm:"not null;index:idx_attendee_event_player,unique"`
	PlayerID      string    `json:"player_id" gorm:"not null;index:idx_attendee_event_player,unique"`
	PaymentStatus string    `json:"payment_status" gorm:"default:'unpaid'"`
	RentedItemIDs []string  `json:"rented_item_ids,omitempty" gorm:"type:jsonb;serializer:json"`
	Note          string    `json:"note,omitempty"`
	CheckedInAt   time.Time `json:"checked_in_at" gorm:"autoCreateTime"`
}
