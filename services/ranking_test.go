package services

import (
	"testing"

	"bosjol-tactical/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveTierPicksHighestQualifying(t *testing.T) {
	ranks := testLadder() // thresholds 0, 100, 500

	assert.Equal(t, "recruit-1", ResolveTier(0, ranks).ID)
	assert.Equal(t, "recruit-1", ResolveTier(99, ranks).ID)
	assert.Equal(t, "recruit-2", ResolveTier(100, ranks).ID, "threshold is an inclusive lower bound")
	assert.Equal(t, "recruit-2", ResolveTier(499, ranks).ID)
	assert.Equal(t, "veteran-1", ResolveTier(500, ranks).ID)
	assert.Equal(t, "veteran-1", ResolveTier(1_000_000, ranks).ID)
}

func TestResolveTierLowestTierFallback(t *testing.T) {
	ranks := []models.Rank{
		{ID: "regular", Name: "Regular", Tiers: []models.Tier{
			{ID: "regular-1", RankID: "regular", Name: "Regular I", MinExperience: 50},
		}},
	}

	// Below every threshold (including negative XP after penalties): the
	// player still lands on the lowest tier, never on the sentinel.
	assert.Equal(t, "regular-1", ResolveTier(10, ranks).ID)
	assert.Equal(t, "regular-1", ResolveTier(-30, ranks).ID)
}

func TestResolveTierUnrankedSentinel(t *testing.T) {
	assert.Equal(t, models.UnrankedTier, ResolveTier(500, nil))
	assert.Equal(t, models.UnrankedTier, ResolveTier(500, []models.Rank{{ID: "empty", Name: "Empty"}}))
}

func TestRankNameFor(t *testing.T) {
	ranks := testLadder()

	assert.Equal(t, "Veteran", RankNameFor(models.Tier{RankID: "veteran"}, ranks))
	assert.Equal(t, "", RankNameFor(models.UnrankedTier, ranks))
}

func TestValidateLadderReportsDuplicateThresholds(t *testing.T) {
	assert.Empty(t, ValidateLadder(testLadder()))

	ranks := []models.Rank{
		{ID: "a", Name: "A", Tiers: []models.Tier{
			{ID: "a-1", RankID: "a", Name: "A I", MinExperience: 100},
		}},
		{ID: "b", Name: "B", Tiers: []models.Tier{
			{ID: "b-1", RankID: "b", Name: "B I", MinExperience: 100},
			{ID: "b-2", RankID: "b", Name: "B II", MinExperience: 300},
		}},
	}

	problems := ValidateLadder(ranks)
	assert.Len(t, problems, 1)
	assert.Contains(t, problems[0], "100")
}
