package models

import "time"

// Signup records a player's intent to attend an event, not yet confirmed.
// Destroyed on check-in, re-created on check-out. IDs are deterministic
// (eventID_playerID) so repeated check-out/check-in cycles reuse the same
// signup identity.
type Signup struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	EventID          string    `gorm:"not null;index:idx_signup_event_player,unique" json:"event_id"`
	PlayerID         string    `gorm:"not null;index:idx_signup_event_player,unique" json:"player_id"`
	RequestedItemIDs []string  `gorm:"type:jsonb;serializer:json" json:"requested_item_ids,omitempty"`
	Note             string    `json:"note,omitempty"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// SignupID builds the deterministic signup identifier for an (event, player)
// pair.
func SignupID(eventID, playerID string) string {
	return eventID + "_" + playerID
}
