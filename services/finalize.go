package services

import (
	"fmt"
	"log"
	"time"

	"bosjol-tactical/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinalizationInput is the read-only snapshot the engine computes over. The
// engine never mutates the scoring table or rank ladder — only players,
// transactions, the target event, and signups come out changed.
type FinalizationInput struct {
	Event   models.Event
	Players []models.Player
	Signups []models.Signup
	Rules   []models.ScoringRule
	Ranks   []models.Rank
	Gear    []models.GearItem
	Now     time.Time
}

// FinalizationResult is everything finalization wants persisted: mutated
// players, new ledger records, history and audit appends, the completed
// event, and the residual signups to delete.
type FinalizationResult struct {
	UpdatedPlayers []models.Player
	Transactions   []models.Transaction
	History        []models.MatchHistoryEntry
	Adjustments    []models.ExperienceAdjustment
	Event          models.Event
	SignupIDs      []string
	MissingRules   []string
}

// ComputeFinalization converts an event's live state into permanent
// progression and ledger records. Pure computation: persistence is the
// caller's job.
//
// Each roster player hits exactly one of three branches — attended (stats,
// history, fee/rental transactions), no-show with an active penalty (XP
// deduction plus audit entry), or untouched. Transaction ids are
// deterministic so a re-run upserts the same ledger rows; experience updates
// are read-modify-write and therefore double-apply on a re-run. That
// asymmetry is deliberate and covered by tests.
func ComputeFinalization(in FinalizationInput) FinalizationResult {
	out := FinalizationResult{Event: in.Event}

	attendeeByPlayer := map[string]models.Attendee{}
	for _, a := range in.Event.Attendees {
		attendeeByPlayer[a.PlayerID] = a
	}

	// Players who expressed intent but were never checked in.
	noShowIDs := map[string]bool{}
	for _, su := range in.Signups {
		if su.EventID != in.Event.ID {
			continue
		}
		out.SignupIDs = append(out.SignupIDs, su.ID)
		if _, attended := attendeeByPlayer[su.PlayerID]; !attended {
			noShowIDs[su.PlayerID] = true
		}
	}

	// A non-negative resolved value means the penalty feature is off.
	noShowPenalty, penaltyFound := ResolveRuleValue(models.RuleNoShow, in.Event.ExperienceOverrides, in.Rules)
	penaltyActive := penaltyFound && noShowPenalty < 0

	resolveStat := func(ruleID string) int64 {
		v, ok := ResolveRuleValue(ruleID, in.Event.ExperienceOverrides, in.Rules)
		if !ok {
			out.MissingRules = appendMissing(out.MissingRules, ruleID)
			return 0
		}
		return v
	}

	gearPrice := func(itemID string) float64 {
		if in.Event.RentalPriceOverrides != nil {
			if p, ok := in.Event.RentalPriceOverrides[itemID]; ok {
				return p
			}
		}
		for _, g := range in.Gear {
			if g.ID == itemID {
				return g.RentalPrice
			}
		}
		return 0
	}

	for _, player := range in.Players {
		attendee, attended := attendeeByPlayer[player.ID]

		switch {
		case attended:
			stats := in.Event.LiveStats[player.ID] // zero value when absent

			gained := in.Event.BaseExperience +
				int64(stats.Kills)*resolveStat(models.RuleKill) +
				int64(stats.Headshots)*resolveStat(models.RuleHeadshot) +
				int64(stats.Deaths)*resolveStat(models.RuleDeath)

			player.Kills += int64(stats.Kills)
			player.Deaths += int64(stats.Deaths)
			player.Headshots += int64(stats.Headshots)
			player.GamesPlayed++
			experienceChanged := gained != 0
			player.Experience += gained

			out.History = append(out.History, models.MatchHistoryEntry{
				ID:         uuid.NewString(),
				PlayerID:   player.ID,
				EventID:    in.Event.ID,
				EventName:  in.Event.Name,
				Kills:      stats.Kills,
				Deaths:     stats.Deaths,
				Headshots:  stats.Headshots,
				XPEarned:   gained,
				RecordedAt: in.Now,
			})

			if models.IsPaidStatus(attendee.PaymentStatus) {
				out.Transactions = append(out.Transactions, models.Transaction{
					ID:            models.EventFeeTransactionID(in.Event.ID, player.ID),
					Date:          in.Now,
					Type:          models.TransactionEventRevenue,
					Amount:        in.Event.EntryFee,
					Description:   fmt.Sprintf("Entry fee: %s — %s", in.Event.Name, player.Callsign),
					EventID:       in.Event.ID,
					PlayerID:      player.ID,
					PaymentStatus: attendee.PaymentStatus,
				})
				for _, itemID := range attendee.RentedItemIDs {
					out.Transactions = append(out.Transactions, models.Transaction{
						ID:            models.RentalTransactionID(in.Event.ID, player.ID, itemID),
						Date:          in.Now,
						Type:          models.TransactionRentalRevenue,
						Amount:        gearPrice(itemID),
						Description:   fmt.Sprintf("Gear rental: %s — %s", in.Event.Name, player.Callsign),
						EventID:       in.Event.ID,
						PlayerID:      player.ID,
						GearItemID:    itemID,
						PaymentStatus: attendee.PaymentStatus,
					})
				}
			}

			if experienceChanged {
				applyTier(&player, in.Ranks)
			}
			out.UpdatedPlayers = append(out.UpdatedPlayers, player)

		case noShowIDs[player.ID] && penaltyActive:
			player.Experience += noShowPenalty
			out.Adjustments = append(out.Adjustments, models.ExperienceAdjustment{
				ID:        uuid.NewString(),
				PlayerID:  player.ID,
				Delta:     noShowPenalty,
				Reason:    fmt.Sprintf("No-show penalty for event %q", in.Event.Name),
				CreatedAt: in.Now,
			})
			applyTier(&player, in.Ranks)
			out.UpdatedPlayers = append(out.UpdatedPlayers, player)

		default:
			// Untouched.
		}
	}

	out.Event.Status = models.EventStatusCompleted
	finalizedAt := in.Now
	out.Event.FinalizedAt = &finalizedAt
	return out
}

func applyTier(player *models.Player, ranks []models.Rank) {
	tier := ResolveTier(player.Experience, ranks)
	player.TierID = tier.ID
	player.TierName = tier.Name
	player.RankID = tier.RankID
	player.RankName = RankNameFor(tier, ranks)
}

func appendMissing(missing []string, ruleID string) []string {
	for _, m := range missing {
		if m == ruleID {
			return missing
		}
	}
	return append(missing, ruleID)
}

// FinalizeService loads snapshots, runs the computation, and applies the
// result through the record store as a set of independent writes. A failure
// partway through leaves a partially-updated world; the response reports what
// was and wasn't written so the admin can reconcile.
type FinalizeService struct {
	DB    *gorm.DB
	Store RecordStore
	Badge *BadgeService
}

func NewFinalizeService(db *gorm.DB, store RecordStore, badge *BadgeService) *FinalizeService {
	return &FinalizeService{DB: db, Store: store, Badge: badge}
}

// FinalizeEvent is the admin endpoint. Destructive and (in the happy path)
// once-per-event: requires confirm=true, and a second run on an already
// finalized event additionally requires force=true.
func (s *FinalizeService) FinalizeEvent(c *fiber.Ctx) error {
	eventID := c.Params("id")

	type Req struct {
		Confirm bool `json:"confirm"`
		Force   bool `json:"force"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if !req.Confirm {
		return c.Status(400).JSON(fiber.Map{"error": "finalization requires confirm=true"})
	}

	var event models.Event
	if err := s.DB.Preload("Attendees").First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}
	if event.FinalizedAt != nil && !req.Force {
		return c.Status(409).JSON(fiber.Map{
			"error":        "event already finalized — re-running doubles experience deltas; pass force=true to proceed anyway",
			"finalized_at": event.FinalizedAt,
		})
	}

	input := FinalizationInput{Event: event, Now: time.Now()}
	if err := s.DB.Find(&input.Players).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching roster"})
	}
	if err := s.DB.Where("event_id = ?", eventID).Find(&input.Signups).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching signups"})
	}
	if err := s.DB.Find(&input.Rules).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching scoring rules"})
	}
	if err := s.DB.Preload("Tiers").Find(&input.Ranks).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching rank ladder"})
	}
	if err := s.DB.Find(&input.Gear).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching gear catalog"})
	}

	result := ComputeFinalization(input)
	for _, ruleID := range result.MissingRules {
		log.Printf("[FINALIZE] ⚠️ scoring rule %q missing for event %s — counted as 0 XP", ruleID, eventID)
	}

	// Apply. Independent writes, no distributed rollback: report failures
	// instead of hiding them.
	var writeErrors []string

	for i := range result.UpdatedPlayers {
		if err := s.Store.UpdateRecord(CollectionPlayers, &result.UpdatedPlayers[i]); err != nil {
			writeErrors = append(writeErrors, fmt.Sprintf("player %s: %v", result.UpdatedPlayers[i].ID, err))
		}
	}
	for i := range result.History {
		if _, err := s.Store.CreateRecord(CollectionMatchHistory, &result.History[i]); err != nil {
			writeErrors = append(writeErrors, fmt.Sprintf("history %s: %v", result.History[i].PlayerID, err))
		}
	}
	for i := range result.Adjustments {
		if _, err := s.Store.CreateRecord(CollectionExperienceAdjustments, &result.Adjustments[i]); err != nil {
			writeErrors = append(writeErrors, fmt.Sprintf("adjustment %s: %v", result.Adjustments[i].PlayerID, err))
		}
	}
	for i := range result.Transactions {
		if err := s.Store.SetRecord(CollectionTransactions, result.Transactions[i].ID, &result.Transactions[i]); err != nil {
			writeErrors = append(writeErrors, fmt.Sprintf("transaction %s: %v", result.Transactions[i].ID, err))
		}
	}
	if err := s.Store.UpdateRecord(CollectionEvents, &result.Event); err != nil {
		writeErrors = append(writeErrors, fmt.Sprintf("event: %v", err))
	}

	// Residual signup cleanup: independent deletions, partial failure leaves
	// orphaned signups on a completed event.
	var cleanupErrors []string
	for _, signupID := range result.SignupIDs {
		if err := s.Store.DeleteRecord(CollectionSignups, signupID); err != nil {
			cleanupErrors = append(cleanupErrors, fmt.Sprintf("signup %s: %v", signupID, err))
		}
	}

	// Achievement patches follow from the new cumulative stats.
	if s.Badge != nil {
		for _, p := range result.UpdatedPlayers {
			if err := s.Badge.AutoAwardBadges(p.ID, event.ID); err != nil {
				log.Printf("[FINALIZE] badge check failed for %s: %v", p.ID, err)
			}
		}
	}

	log.Printf("[FINALIZE] ✅ event %s: %d players updated, %d transactions, %d no-show penalties, %d signups cleaned",
		eventID, len(result.UpdatedPlayers), len(result.Transactions), len(result.Adjustments), len(result.SignupIDs)-len(cleanupErrors))

	resp := fiber.Map{
		"event_id":          eventID,
		"status":            result.Event.Status,
		"finalized_at":      result.Event.FinalizedAt,
		"players_updated":   len(result.UpdatedPlayers),
		"transactions":      len(result.Transactions),
		"no_show_penalties": len(result.Adjustments),
		"signups_cleaned":   len(result.SignupIDs) - len(cleanupErrors),
	}
	if len(result.MissingRules) > 0 {
		resp["missing_rules"] = result.MissingRules
	}
	if len(writeErrors) > 0 {
		resp["write_errors"] = writeErrors
	}
	if len(cleanupErrors) > 0 {
		resp["cleanup_errors"] = cleanupErrors
	}
	if len(writeErrors) > 0 {
		return c.Status(500).JSON(resp)
	}
	return c.JSON(resp)
}
