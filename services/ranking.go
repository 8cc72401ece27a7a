package services

import (
	"fmt"
	"sort"

	"bosjol-tactical/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RankingService struct {
	DB *gorm.DB
}

func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{DB: db}
}

// ResolveTier derives a player's tier from cumulative experience.
//
// The global ladder is every tier across every rank. Tiers are scanned from
// highest threshold down; the first whose minimum is at or below the player's
// experience wins. A player below every threshold still gets the lowest
// defined tier — only an empty ladder yields the Unranked sentinel.
//
// Two tiers sharing the same threshold resolve in input order. That ordering
// is defined but arbitrary; ValidateLadder reports the duplicates so admins
// can fix the data instead of relying on it.
func ResolveTier(experience int64, ranks []models.Rank) models.Tier {
	var tiers []models.Tier
	for _, r := range ranks {
		tiers = append(tiers, r.Tiers...)
	}
	if len(tiers) == 0 {
		return models.UnrankedTier
	}

	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinExperience > tiers[j].MinExperience
	})

	for _, t := range tiers {
		if t.MinExperience <= experience {
			return t
		}
	}
	// Below every threshold: everyone with stats has at least the lowest tier.
	return tiers[len(tiers)-1]
}

// RankNameFor returns the display name of the rank owning a tier, or "" for
// the sentinel.
func RankNameFor(tier models.Tier, ranks []models.Rank) string {
	for _, r := range ranks {
		if r.ID == tier.RankID {
			return r.Name
		}
	}
	return ""
}

// ValidateLadder reports tiers that share a minimum-experience threshold.
// Duplicate thresholds make tier resolution input-order dependent and usually
// indicate a data-entry mistake.
func ValidateLadder(ranks []models.Rank) []string {
	byThreshold := map[int64][]string{}
	for _, r := range ranks {
		for _, t := range r.Tiers {
			byThreshold[t.MinExperience] = append(byThreshold[t.MinExperience], t.Name)
		}
	}
	var problems []string
	for threshold, names := range byThreshold {
		if len(names) > 1 {
			problems = append(problems, fmt.Sprintf("tiers %v share min_experience %d", names, threshold))
		}
	}
	sort.Strings(problems)
	return problems
}

// LoadLadder fetches all ranks with tiers ordered for display.
func (s *RankingService) LoadLadder() ([]models.Rank, error) {
	var ranks []models.Rank
	err := s.DB.
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_experience ASC")
		}).
		Order("\"sort_order\" ASC").
		Find(&ranks).Error
	return ranks, err
}

func (s *RankingService) GetLadder(c *fiber.Ctx) error {
	ranks, err := s.LoadLadder()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch rank ladder", "cause": err.Error()})
	}
	return c.JSON(ranks)
}

func (s *RankingService) ValidateLadderEndpoint(c *fiber.Ctx) error {
	ranks, err := s.LoadLadder()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch rank ladder", "cause": err.Error()})
	}
	problems := ValidateLadder(ranks)
	if len(problems) > 0 {
		return c.Status(422).JSON(fiber.Map{"valid": false, "problems": problems})
	}
	return c.JSON(fiber.Map{"valid": true})
}

func (s *RankingService) CreateRank(c *fiber.Ctx) error {
	var rank models.Rank
	if err := c.BodyParser(&rank); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if rank.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	if rank.ID == "" {
		rank.ID = uuid.NewString()
	}
	for i := range rank.Tiers {
		if rank.Tiers[i].ID == "" {
			rank.Tiers[i].ID = uuid.NewString()
		}
		rank.Tiers[i].RankID = rank.ID
	}
	if err := s.DB.Create(&rank).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed", "cause": err.Error()})
	}
	return c.Status(201).JSON(rank)
}

func (s *RankingService) UpdateRank(c *fiber.Ctx) error {
	id := c.Params("id")
	var rank models.Rank
	if err := s.DB.Preload("Tiers").First(&rank, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "rank not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching rank"})
	}

	type Req struct {
		Name      *string `json:"name"`
		SortOrder *int    `json:"sort_order"`
		IconURL   *string `json:"icon_url"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.Name != nil {
		rank.Name = *req.Name
	}
	if req.SortOrder != nil {
		rank.SortOrder = *req.SortOrder
	}
	if req.IconURL != nil {
		rank.IconURL = *req.IconURL
	}
	if err := s.DB.Save(&rank).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed", "cause": err.Error()})
	}
	return c.JSON(rank)
}

// DeleteRank removes a rank and all its tiers. Players whose cached rank
// referenced it keep the stale cache until their experience next changes.
func (s *RankingService) DeleteRank(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(400).JSON(fiber.Map{"error": "deleting a rank requires ?confirm=true"})
	}
	id := c.Params("id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Tier{}, "rank_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Rank{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "rank not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed", "cause": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "rank deleted", "id": id})
}

func (s *RankingService) CreateTier(c *fiber.Ctx) error {
	rankID := c.Params("id")
	var rank models.Rank
	if err := s.DB.First(&rank, "id = ?", rankID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "rank not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching rank"})
	}

	var tier models.Tier
	if err := c.BodyParser(&tier); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if tier.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	if tier.MinExperience < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "min_experience must be non-negative"})
	}
	tier.ID = uuid.NewString()
	tier.RankID = rankID

	if err := s.DB.Create(&tier).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed", "cause": err.Error()})
	}

	// Warn (don't block) when the new tier collides with an existing threshold.
	ranks, lerr := s.LoadLadder()
	if lerr == nil {
		if problems := ValidateLadder(ranks); len(problems) > 0 {
			return c.Status(201).JSON(fiber.Map{"tier": tier, "ladder_warnings": problems})
		}
	}
	return c.Status(201).JSON(tier)
}

func (s *RankingService) UpdateTier(c *fiber.Ctx) error {
	id := c.Params("tier_id")
	var tier models.Tier
	if err := s.DB.First(&tier, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "tier not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tier"})
	}

	type Req struct {
		Name          *string `json:"name"`
		MinExperience *int64  `json:"min_experience"`
		Perks         *string `json:"perks"`
		IconURL       *string `json:"icon_url"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.MinExperience != nil && *req.MinExperience < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "min_experience must be non-negative"})
	}
	if req.Name != nil {
		tier.Name = *req.Name
	}
	if req.MinExperience != nil {
		tier.MinExperience = *req.MinExperience
	}
	if req.Perks != nil {
		tier.Perks = *req.Perks
	}
	if req.IconURL != nil {
		tier.IconURL = *req.IconURL
	}
	if err := s.DB.Save(&tier).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed", "cause": err.Error()})
	}
	return c.JSON(tier)
}

func (s *RankingService) DeleteTier(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(400).JSON(fiber.Map{"error": "deleting a tier requires ?confirm=true"})
	}
	id := c.Params("tier_id")
	res := s.DB.Delete(&models.Tier{}, "id = ?", id)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed", "cause": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "tier not found"})
	}
	return c.JSON(fiber.Map{"message": "tier deleted", "id": id})
}
