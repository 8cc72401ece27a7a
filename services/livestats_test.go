package services

import (
	"testing"

	"bosjol-tactical/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLiveStatAllocatesAndSets(t *testing.T) {
	stats, ok := ApplyLiveStat(nil, "p1", StatKills, 3)
	require.True(t, ok)
	assert.Equal(t, 3, stats["p1"].Kills)
	assert.Equal(t, 0, stats["p1"].Deaths, "untouched counters stay zero")
}

func TestApplyLiveStatPreservesOtherCounters(t *testing.T) {
	stats := models.LiveStatMap{"p1": {Kills: 3, Deaths: 1}}

	stats, ok := ApplyLiveStat(stats, "p1", StatHeadshots, 2)
	require.True(t, ok)
	assert.Equal(t, models.LiveStat{Kills: 3, Deaths: 1, Headshots: 2}, stats["p1"])

	// An absolute set replaces, not increments.
	stats, ok = ApplyLiveStat(stats, "p1", StatKills, 5)
	require.True(t, ok)
	assert.Equal(t, 5, stats["p1"].Kills)
}

func TestApplyLiveStatClampsNegative(t *testing.T) {
	stats, ok := ApplyLiveStat(nil, "p1", StatDeaths, -4)
	require.True(t, ok)
	assert.Equal(t, 0, stats["p1"].Deaths)
}

func TestApplyLiveStatUnknownField(t *testing.T) {
	stats := models.LiveStatMap{"p1": {Kills: 3}}

	out, ok := ApplyLiveStat(stats, "p1", "assists", 7)
	assert.False(t, ok)
	assert.Equal(t, 3, out["p1"].Kills, "map unchanged on unknown field")
}
