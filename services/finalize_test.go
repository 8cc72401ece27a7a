package services

import (
	"testing"
	"time"

	"bosjol-tactical/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardRules() []models.ScoringRule {
	return []models.ScoringRule{
		{ID: models.RuleKill, Experience: 10},
		{ID: models.RuleHeadshot, Experience: 25},
		{ID: models.RuleDeath, Experience: -5},
		{ID: models.RuleNoShow, Experience: -15},
	}
}

func testLadder() []models.Rank {
	return []models.Rank{
		{
			ID: "recruit", Name: "Recruit",
			Tiers: []models.Tier{
				{ID: "recruit-1", RankID: "recruit", Name: "Recruit I", MinExperience: 0},
				{ID: "recruit-2", RankID: "recruit", Name: "Recruit II", MinExperience: 100},
			},
		},
		{
			ID: "veteran", Name: "Veteran",
			Tiers: []models.Tier{
				{ID: "veteran-1", RankID: "veteran", Name: "Veteran I", MinExperience: 500},
			},
		},
	}
}

func TestComputeFinalizationAttendedPlayer(t *testing.T) {
	now := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	in := FinalizationInput{
		Event: models.Event{
			ID:             "ev1",
			Name:           "Night Ops",
			BaseExperience: 50,
			Attendees: []models.Attendee{
				{ID: "at1", EventID: "ev1", PlayerID: "p1", PaymentStatus: models.PaymentUnpaid},
			},
			LiveStats: models.LiveStatMap{
				"p1": {Kills: 3, Headshots: 1, Deaths: 2},
			},
		},
		Players: []models.Player{
			{ID: "p1", Callsign: "Ghost", Kills: 7, Deaths: 4, GamesPlayed: 2, Experience: 10},
		},
		Rules: standardRules(),
		Ranks: testLadder(),
		Now:   now,
	}

	out := ComputeFinalization(in)

	require.Len(t, out.UpdatedPlayers, 1)
	p := out.UpdatedPlayers[0]
	// 50 base + 3*10 + 1*25 + 2*(-5) = 95
	assert.Equal(t, int64(105), p.Experience)
	assert.Equal(t, int64(10), p.Kills)
	assert.Equal(t, int64(6), p.Deaths)
	assert.Equal(t, int64(1), p.Headshots)
	assert.Equal(t, int64(3), p.GamesPlayed)
	assert.Equal(t, "recruit-2", p.TierID)
	assert.Equal(t, "Recruit", p.RankName)

	require.Len(t, out.History, 1)
	h := out.History[0]
	assert.Equal(t, int64(95), h.XPEarned)
	assert.Equal(t, "Night Ops", h.EventName)
	assert.Equal(t, 3, h.Kills)
	assert.Equal(t, now, h.RecordedAt)

	assert.Empty(t, out.Transactions, "unpaid attendee must produce no ledger records")
	assert.Empty(t, out.Adjustments)
	assert.Empty(t, out.MissingRules)

	assert.Equal(t, models.EventStatusCompleted, out.Event.Status)
	require.NotNil(t, out.Event.FinalizedAt)
	assert.Equal(t, now, *out.Event.FinalizedAt)
}

func TestComputeFinalizationOverridePrecedence(t *testing.T) {
	in := FinalizationInput{
		Event: models.Event{
			ID:                  "ev1",
			ExperienceOverrides: map[string]int64{models.RuleKill: 20},
			Attendees:           []models.Attendee{{ID: "at1", EventID: "ev1", PlayerID: "p1"}},
			LiveStats:           models.LiveStatMap{"p1": {Kills: 2}},
		},
		Players: []models.Player{{ID: "p1"}},
		Rules:   standardRules(),
		Now:     time.Now(),
	}

	out := ComputeFinalization(in)

	require.Len(t, out.UpdatedPlayers, 1)
	assert.Equal(t, int64(40), out.UpdatedPlayers[0].Experience)
}

func TestComputeFinalizationNoShowPenalty(t *testing.T) {
	in := FinalizationInput{
		Event: models.Event{ID: "ev1", Name: "CQB Sunday"},
		Players: []models.Player{
			{ID: "p1", Experience: 200},
		},
		Signups: []models.Signup{
			{ID: models.SignupID("ev1", "p1"), EventID: "ev1", PlayerID: "p1"},
		},
		Rules: standardRules(),
		Ranks: testLadder(),
		Now:   time.Now(),
	}

	out := ComputeFinalization(in)

	require.Len(t, out.UpdatedPlayers, 1)
	p := out.UpdatedPlayers[0]
	assert.Equal(t, int64(185), p.Experience)
	assert.Equal(t, int64(0), p.GamesPlayed, "no-show is not a played game")

	require.Len(t, out.Adjustments, 1)
	adj := out.Adjustments[0]
	assert.Equal(t, "p1", adj.PlayerID)
	assert.Equal(t, int64(-15), adj.Delta)
	assert.Contains(t, adj.Reason, "CQB Sunday")

	assert.Empty(t, out.History)
	assert.Equal(t, []string{models.SignupID("ev1", "p1")}, out.SignupIDs)
}

func TestComputeFinalizationPenaltyDisabledWhenNonNegative(t *testing.T) {
	in := FinalizationInput{
		Event:   models.Event{ID: "ev1"},
		Players: []models.Player{{ID: "p1", Experience: 200}},
		Signups: []models.Signup{{ID: "ev1_p1", EventID: "ev1", PlayerID: "p1"}},
		Rules:   []models.ScoringRule{{ID: models.RuleNoShow, Experience: 0}},
		Now:     time.Now(),
	}

	out := ComputeFinalization(in)

	assert.Empty(t, out.UpdatedPlayers, "no-show with inactive penalty stays untouched")
	assert.Empty(t, out.Adjustments)
	// The residual signup is still cleaned up.
	assert.Equal(t, []string{"ev1_p1"}, out.SignupIDs)
}

func TestComputeFinalizationIgnoresForeignSignups(t *testing.T) {
	in := FinalizationInput{
		Event:   models.Event{ID: "ev1"},
		Players: []models.Player{{ID: "p1", Experience: 200}},
		Signups: []models.Signup{{ID: "ev2_p1", EventID: "ev2", PlayerID: "p1"}},
		Rules:   standardRules(),
		Now:     time.Now(),
	}

	out := ComputeFinalization(in)

	assert.Empty(t, out.UpdatedPlayers)
	assert.Empty(t, out.SignupIDs)
}

func TestComputeFinalizationPaidAttendeeTransactions(t *testing.T) {
	now := time.Now()
	in := FinalizationInput{
		Event: models.Event{
			ID:       "ev1",
			Name:     "Milsim Weekend",
			EntryFee: 35,
			RentalPriceOverrides: map[string]float64{
				"gear-aeg": 12, // event-day discount over the catalog's 20
			},
			Attendees: []models.Attendee{
				{
					ID: "at1", EventID: "ev1", PlayerID: "p1",
					PaymentStatus: models.PaymentPaidCash,
					RentedItemIDs: []string{"gear-aeg", "gear-mask"},
				},
			},
		},
		Players: []models.Player{{ID: "p1", Callsign: "Viper"}},
		Rules:   standardRules(),
		Gear: []models.GearItem{
			{ID: "gear-aeg", RentalPrice: 20},
			{ID: "gear-mask", RentalPrice: 5},
		},
		Now: now,
	}

	out := ComputeFinalization(in)

	require.Len(t, out.Transactions, 3)

	fee := out.Transactions[0]
	assert.Equal(t, models.EventFeeTransactionID("ev1", "p1"), fee.ID)
	assert.Equal(t, models.TransactionEventRevenue, fee.Type)
	assert.Equal(t, 35.0, fee.Amount)
	assert.Equal(t, models.PaymentPaidCash, fee.PaymentStatus)

	byItem := map[string]models.Transaction{}
	for _, txn := range out.Transactions[1:] {
		byItem[txn.GearItemID] = txn
	}
	assert.Equal(t, 12.0, byItem["gear-aeg"].Amount, "override beats catalog price")
	assert.Equal(t, 5.0, byItem["gear-mask"].Amount, "catalog price when no override")
	assert.Equal(t, models.RentalTransactionID("ev1", "p1", "gear-aeg"), byItem["gear-aeg"].ID)
}

func TestComputeFinalizationRerunKeepsTransactionIDsButDoublesExperience(t *testing.T) {
	event := models.Event{
		ID:             "ev1",
		EntryFee:       25,
		BaseExperience: 50,
		Attendees: []models.Attendee{
			{ID: "at1", EventID: "ev1", PlayerID: "p1", PaymentStatus: models.PaymentPaidCard},
		},
		LiveStats: models.LiveStatMap{"p1": {Kills: 2}},
	}
	first := ComputeFinalization(FinalizationInput{
		Event:   event,
		Players: []models.Player{{ID: "p1"}},
		Rules:   standardRules(),
		Now:     time.Now(),
	})
	require.Len(t, first.UpdatedPlayers, 1)
	assert.Equal(t, int64(70), first.UpdatedPlayers[0].Experience)

	// Re-run over the already-updated roster, as a force re-finalization does.
	second := ComputeFinalization(FinalizationInput{
		Event:   event,
		Players: first.UpdatedPlayers,
		Rules:   standardRules(),
		Now:     time.Now(),
	})

	require.Len(t, second.Transactions, 1)
	assert.Equal(t, first.Transactions[0].ID, second.Transactions[0].ID,
		"deterministic ids make the ledger idempotent across re-runs")
	assert.Equal(t, int64(140), second.UpdatedPlayers[0].Experience,
		"experience accumulation double-applies on a re-run")
	assert.Equal(t, int64(4), second.UpdatedPlayers[0].Kills)
}

func TestComputeFinalizationMissingRuleCountsZero(t *testing.T) {
	in := FinalizationInput{
		Event: models.Event{
			ID:        "ev1",
			Attendees: []models.Attendee{{ID: "at1", EventID: "ev1", PlayerID: "p1"}},
			LiveStats: models.LiveStatMap{"p1": {Kills: 5, Headshots: 2}},
		},
		Players: []models.Player{{ID: "p1"}},
		Rules:   []models.ScoringRule{{ID: models.RuleDeath, Experience: -5}},
		Now:     time.Now(),
	}

	out := ComputeFinalization(in)

	require.Len(t, out.UpdatedPlayers, 1)
	assert.Equal(t, int64(0), out.UpdatedPlayers[0].Experience)
	assert.ElementsMatch(t, []string{models.RuleKill, models.RuleHeadshot}, out.MissingRules)
}

func TestComputeFinalizationAttendeeWithoutStats(t *testing.T) {
	in := FinalizationInput{
		Event: models.Event{
			ID:             "ev1",
			BaseExperience: 50,
			Attendees:      []models.Attendee{{ID: "at1", EventID: "ev1", PlayerID: "p1"}},
		},
		Players: []models.Player{{ID: "p1"}},
		Rules:   standardRules(),
		Now:     time.Now(),
	}

	out := ComputeFinalization(in)

	require.Len(t, out.UpdatedPlayers, 1)
	assert.Equal(t, int64(50), out.UpdatedPlayers[0].Experience, "absent counters read as zero")
	require.Len(t, out.History, 1)
	assert.Equal(t, 0, out.History[0].Kills)
}
