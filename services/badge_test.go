package services

import (
	"testing"

	"bosjol-tactical/models"

	"github.com/stretchr/testify/assert"
)

func TestMeetsThreshold(t *testing.T) {
	player := &models.Player{GamesPlayed: 25, Kills: 110, Headshots: 12, Experience: 900}

	assert.True(t, meetsThreshold(player, map[string]int64{"games_played": 25}))
	assert.True(t, meetsThreshold(player, map[string]int64{"kills": 100, "headshots": 10}))
	assert.False(t, meetsThreshold(player, map[string]int64{"kills": 100, "headshots": 50}),
		"every criterion must hold")
	assert.False(t, meetsThreshold(player, map[string]int64{"experience": 1000}))
}

func TestMeetsThresholdEdgeCases(t *testing.T) {
	player := &models.Player{Kills: 999}

	assert.False(t, meetsThreshold(player, nil))
	assert.False(t, meetsThreshold(player, map[string]int64{}))
	assert.False(t, meetsThreshold(player, map[string]int64{"assists": 1}),
		"unknown criterion never matches")
}
