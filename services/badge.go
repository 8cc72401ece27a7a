package services

import (
	"log"

	"bosjol-tactical/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// SeedBadgeTypes inserts the built-in patch definitions if missing.
func (s *BadgeService) SeedBadgeTypes() error {
	return s.DB.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&models.BadgeTriggers).Error
}

// AutoAwardBadges checks every badge threshold against a player's cumulative
// stats and awards whatever is newly earned. eventID records which event
// triggered the check (may be empty for admin XP grants).
func (s *BadgeService) AutoAwardBadges(playerID, eventID string) error {
	var player models.Player
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		return err
	}

	var badgeTypes []models.BadgeType
	if err := s.DB.Find(&badgeTypes).Error; err != nil {
		return err
	}

	for _, bt := range badgeTypes {
		if !meetsThreshold(&player, bt.Threshold) {
			continue
		}
		var count int64
		s.DB.Model(&models.PlayerBadge{}).
			Where("player_id = ? AND badge_type_id = ?", playerID, bt.ID).
			Count(&count)
		if count > 0 {
			continue
		}
		award := models.PlayerBadge{
			PlayerID:    playerID,
			BadgeTypeID: bt.ID,
			EventID:     eventID,
		}
		if err := s.DB.Create(&award).Error; err != nil {
			return err
		}
		log.Printf("[BADGE] 🎖️ %s earned %q", player.Callsign, bt.Name)
	}
	return nil
}

func meetsThreshold(player *models.Player, req map[string]int64) bool {
	if len(req) == 0 {
		return false
	}
	for key, required := range req {
		switch key {
		case "games_played":
			if player.GamesPlayed < required {
				return false
			}
		case "kills":
			if player.Kills < required {
				return false
			}
		case "deaths":
			if player.Deaths < required {
				return false
			}
		case "headshots":
			if player.Headshots < required {
				return false
			}
		case "experience":
			if player.Experience < required {
				return false
			}
		default:
			return false // unknown criterion never matches
		}
	}
	return true
}

// GetPlayerBadges returns a player's awarded patches with their definitions.
func (s *BadgeService) GetPlayerBadges(c *fiber.Ctx) error {
	playerID := c.Params("id")

	type Row struct {
		ID          string `json:"id"`
		Code        string `json:"code"`
		Name        string `json:"name"`
		Description string `json:"description"`
		IconURL     string `json:"icon_url"`
		Rarity      string `json:"rarity"`
		EventID     string `json:"event_id,omitempty"`
		AwardedAt   string `json:"awarded_at"`
	}
	var rows []Row
	err := s.DB.Raw(`
		SELECT pb.id, bt.code, bt.name, bt.description, bt.icon_url, bt.rarity, pb.event_id, pb.awarded_at
		FROM player_badges pb
		INNER JOIN badge_types bt ON bt.id = pb.badge_type_id
		WHERE pb.player_id = ?
		ORDER BY pb.awarded_at DESC
	`, playerID).Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch badges", "cause": err.Error()})
	}
	return c.JSON(rows)
}
