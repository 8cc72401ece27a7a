package services

import (
	"strconv"

	"bosjol-tactical/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LedgerService is read-only over the transaction table. Transactions are
// created by finalization alone; corrections are compensating entries, not
// edits.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

func (s *LedgerService) GetTransactions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	size, _ := strconv.Atoi(c.Query("size", "50"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}

	query := s.DB.Model(&models.Transaction{})
	if eventID := c.Query("event_id"); eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}
	if playerID := c.Query("player_id"); playerID != "" {
		query = query.Where("player_id = ?", playerID)
	}
	if txType := c.Query("type"); txType != "" {
		query = query.Where("type = ?", txType)
	}

	var total int64
	query.Count(&total)

	var transactions []models.Transaction
	if err := query.Order("date DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&transactions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch transactions", "cause": err.Error()})
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
		"page":         page,
		"size":         size,
		"total_items":  total,
	})
}

// GetEventRevenue summarises an event's ledger by transaction type.
func (s *LedgerService) GetEventRevenue(c *fiber.Ctx) error {
	eventID := c.Params("id")

	type Row struct {
		Type   string  `json:"type"`
		Count  int64   `json:"count"`
		Amount float64 `json:"amount"`
	}
	var rows []Row
	err := s.DB.Raw(`
		SELECT type, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount
		FROM transactions
		WHERE event_id = ?
		GROUP BY type
		ORDER BY type
	`, eventID).Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to summarise revenue", "cause": err.Error()})
	}

	var total float64
	for _, r := range rows {
		total += r.Amount
	}
	return c.JSON(fiber.Map{"event_id": eventID, "by_type": rows, "total": total})
}
