package services

import (
	"bosjol-tactical/models"
)

// Live stat field names accepted by ApplyLiveStat.
const (
	StatKills     = "kills"
	StatDeaths    = "deaths"
	StatHeadshots = "headshots"
)

// ApplyLiveStat sets one counter for one player in an event's live stats,
// clamping to a non-negative value. Returns the updated map (allocating it on
// first write) and whether the field name was recognised.
func ApplyLiveStat(stats models.LiveStatMap, playerID, field string, value int) (models.LiveStatMap, bool) {
	if stats == nil {
		stats = models.LiveStatMap{}
	}
	if value < 0 {
		value = 0
	}

	entry := stats[playerID] // zero value when absent
	switch field {
	case StatKills:
		entry.Kills = value
	case StatDeaths:
		entry.Deaths = value
	case StatHeadshots:
		entry.Headshots = value
	default:
		return stats, false
	}
	stats[playerID] = entry
	return stats, true
}
