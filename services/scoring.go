package services

import (
	"log"

	"bosjol-tactical/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoringService struct {
	DB *gorm.DB
}

func NewScoringService(db *gorm.DB) *ScoringService {
	return &ScoringService{DB: db}
}

// SeedDefaultRules inserts the built-in rules if they are missing. Existing
// rows are left untouched so admin edits survive restarts.
func (s *ScoringService) SeedDefaultRules() error {
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.DefaultScoringRules).Error
}

// ResolveRuleValue looks up a rule's experience delta, preferring the
// event-level override over the global table. The found flag is explicit —
// callers decide what a miss means instead of silently treating it as zero.
func ResolveRuleValue(ruleID string, overrides map[string]int64, rules []models.ScoringRule) (int64, bool) {
	if overrides != nil {
		if v, ok := overrides[ruleID]; ok {
			return v, true
		}
	}
	for _, r := range rules {
		if r.ID == ruleID {
			return r.Experience, true
		}
	}
	return 0, false
}

func (s *ScoringService) GetAllRules(c *fiber.Ctx) error {
	var rules []models.ScoringRule
	if err := s.DB.Order("id ASC").Find(&rules).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch scoring rules", "cause": err.Error()})
	}
	return c.JSON(rules)
}

func (s *ScoringService) CreateRule(c *fiber.Ctx) error {
	var rule models.ScoringRule
	if err := c.BodyParser(&rule); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if rule.ID == "" || rule.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "id and name are required"})
	}

	var existing models.ScoringRule
	if err := s.DB.First(&existing, "id = ?", rule.ID).Error; err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "rule already exists", "rule": existing})
	}

	if err := s.DB.Create(&rule).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed", "cause": err.Error()})
	}
	log.Printf("[SCORING] Rule created: %s (%+d XP)", rule.ID, rule.Experience)
	return c.Status(201).JSON(rule)
}

func (s *ScoringService) UpdateRule(c *fiber.Ctx) error {
	id := c.Params("id")

	var rule models.ScoringRule
	if err := s.DB.First(&rule, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "rule not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching rule"})
	}

	type Req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Experience  *int64  `json:"experience"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.Experience != nil {
		rule.Experience = *req.Experience
	}

	if err := s.DB.Save(&rule).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed", "cause": err.Error()})
	}
	return c.JSON(rule)
}

func (s *ScoringService) DeleteRule(c *fiber.Ctx) error {
	id := c.Params("id")
	res := s.DB.Delete(&models.ScoringRule{}, "id = ?", id)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed", "cause": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "rule not found"})
	}
	return c.JSON(fiber.Map{"message": "rule deleted", "id": id})
}
