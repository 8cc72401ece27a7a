package services

import (
	"log"
	"path/filepath"
	"strconv"

	"bosjol-tactical/models"
	"bosjol-tactical/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RosterService struct {
	DB      *gorm.DB
	Ranking *RankingService
	Badge   *BadgeService
}

func NewRosterService(db *gorm.DB, ranking *RankingService, badge *BadgeService) *RosterService {
	return &RosterService{DB: db, Ranking: ranking, Badge: badge}
}

func (s *RosterService) CreatePlayer(c *fiber.Ctx) error {
	callsign := c.FormValue("callsign")
	if callsign == "" {
		return c.Status(400).JSON(fiber.Map{"error": "callsign is required"})
	}

	player := &models.Player{
		ID:        uuid.NewString(),
		Callsign:  callsign,
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		TeamRole:  c.FormValue("team_role"),
	}

	if avatar, err := c.FormFile("avatar"); err == nil && avatar.Size > 0 {
		ext := filepath.Ext(avatar.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "players/avatars/" + player.ID + ext
		url, err := utils.UploadFileToR2(avatar, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload avatar"})
		}
		player.AvatarURL = url
	}

	if err := s.DB.Create(player).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed", "cause": err.Error()})
	}
	return c.Status(201).JSON(player)
}

func (s *RosterService) GetAllPlayers(c *fiber.Ctx) error {
	var players []models.Player
	if err := s.DB.Order("callsign ASC").Find(&players).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch roster"})
	}
	return c.JSON(players)
}

func (s *RosterService) GetPlayerByID(c *fiber.Ctx) error {
	var player models.Player
	err := s.DB.
		Preload("MatchHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("recorded_at DESC")
		}).
		Preload("ExperienceAdjustments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&player, "id = ?", c.Params("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching player"})
	}
	return c.JSON(player)
}

// UpdatePlayer edits profile fields only. Stats, rank and history stay the
// engine's property.
func (s *RosterService) UpdatePlayer(c *fiber.Ctx) error {
	var player models.Player
	if err := s.DB.First(&player, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching player"})
	}

	type Req struct {
		Callsign  *string `json:"callsign"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
		TeamRole  *string `json:"team_role"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.Callsign != nil {
		if *req.Callsign == "" {
			return c.Status(400).JSON(fiber.Map{"error": "callsign cannot be empty"})
		}
		player.Callsign = *req.Callsign
	}
	if req.FirstName != nil {
		player.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		player.LastName = *req.LastName
	}
	if req.Email != nil {
		player.Email = *req.Email
	}
	if req.Phone != nil {
		player.Phone = *req.Phone
	}
	if req.TeamRole != nil {
		player.TeamRole = *req.TeamRole
	}

	if err := s.DB.Save(&player).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed", "cause": err.Error()})
	}
	return c.JSON(player)
}

func (s *RosterService) DeletePlayer(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(400).JSON(fiber.Map{"error": "deleting a player requires ?confirm=true"})
	}
	id := c.Params("id")
	res := s.DB.Delete(&models.Player{}, "id = ?", id)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed", "cause": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	return c.JSON(fiber.Map{"message": "player deleted", "id": id})
}

// GetPlayerProgression returns stats plus the live-resolved tier, so the view
// reflects the current ladder even when the cached rank is stale.
func (s *RosterService) GetPlayerProgression(c *fiber.Ctx) error {
	var player models.Player
	if err := s.DB.First(&player, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching player"})
	}

	ranks, err := s.Ranking.LoadLadder()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch rank ladder"})
	}
	tier := ResolveTier(player.Experience, ranks)

	return c.JSON(fiber.Map{
		"id":           player.ID,
		"callsign":     player.Callsign,
		"kills":        player.Kills,
		"deaths":       player.Deaths,
		"headshots":    player.Headshots,
		"games_played": player.GamesPlayed,
		"experience":   player.Experience,
		"cached_rank":  fiber.Map{"rank_id": player.RankID, "rank_name": player.RankName, "tier_id": player.TierID, "tier_name": player.TierName},
		"resolved_tier": fiber.Map{
			"tier_id":   tier.ID,
			"tier_name": tier.Name,
			"rank_id":   tier.RankID,
			"rank_name": RankNameFor(tier, ranks),
		},
	})
}

func (s *RosterService) GetPlayerHistory(c *fiber.Ctx) error {
	playerID := c.Params("id")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	size, _ := strconv.Atoi(c.Query("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var total int64
	s.DB.Model(&models.MatchHistoryEntry{}).Where("player_id = ?", playerID).Count(&total)

	var entries []models.MatchHistoryEntry
	if err := s.DB.Where("player_id = ?", playerID).
		Order("recorded_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&entries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch history"})
	}

	return c.JSON(fiber.Map{
		"entries":     entries,
		"page":        page,
		"size":        size,
		"total_items": total,
		"total_pages": (total + int64(size) - 1) / int64(size),
	})
}

func (s *RosterService) GetPlayerAdjustments(c *fiber.Ctx) error {
	var adjustments []models.ExperienceAdjustment
	if err := s.DB.Where("player_id = ?", c.Params("id")).
		Order("created_at DESC").
		Find(&adjustments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch adjustments"})
	}
	return c.JSON(adjustments)
}

// GrantExperience applies an out-of-band XP delta with an audit entry and
// recomputes the cached rank.
func (s *RosterService) GrantExperience(c *fiber.Ctx) error {
	type Req struct {
		PlayerID string `json:"player_id"`
		Delta    int64  `json:"delta"`
		Reason   string `json:"reason"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.PlayerID == "" || req.Delta == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "player_id and a non-zero delta are required"})
	}

	ranks, err := s.Ranking.LoadLadder()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch rank ladder"})
	}

	var player models.Player
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&player, "id = ?", req.PlayerID).Error; err != nil {
			return err
		}
		player.Experience += req.Delta
		applyTier(&player, ranks)
		if err := tx.Save(&player).Error; err != nil {
			return err
		}
		return tx.Create(&models.ExperienceAdjustment{
			ID:       uuid.NewString(),
			PlayerID: player.ID,
			Delta:    req.Delta,
			Reason:   req.Reason,
		}).Error
	})
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "XP grant failed", "cause": err.Error()})
	}

	if s.Badge != nil {
		if err := s.Badge.AutoAwardBadges(player.ID, ""); err != nil {
			log.Printf("[ROSTER] badge check failed for %s: %v", player.ID, err)
		}
	}

	log.Printf("🎖️ XP granted: %s %+d (reason: %s)", player.Callsign, req.Delta, req.Reason)
	return c.JSON(player)
}
