package services

import (
	"path/filepath"
	"strconv"

	"bosjol-tactical/models"
	"bosjol-tactical/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GearService struct {
	DB *gorm.DB
}

func NewGearService(db *gorm.DB) *GearService {
	return &GearService{DB: db}
}

func (s *GearService) CreateGearItem(c *fiber.Ctx) error {
	name := c.FormValue("name")
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	price := 0.0
	if priceStr := c.FormValue("rental_price"); priceStr != "" {
		f, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || f < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "rental_price must be a non-negative number"})
		}
		price = f
	}

	item := &models.GearItem{
		ID:          uuid.NewString(),
		Name:        name,
		Description: c.FormValue("description"),
		RentalPrice: price,
		Available:   true,
	}

	if photo, err := c.FormFile("photo"); err == nil && photo.Size > 0 {
		ext := filepath.Ext(photo.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "gear/" + item.ID + ext
		url, err := utils.UploadFileToR2(photo, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload photo"})
		}
		item.PhotoURL = url
	}

	if err := s.DB.Create(item).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed", "cause": err.Error()})
	}
	return c.Status(201).JSON(item)
}

func (s *GearService) GetAllGear(c *fiber.Ctx) error {
	var items []models.GearItem
	query := s.DB.Order("name ASC")
	if c.Query("available") == "true" {
		query = query.Where("available = ?", true)
	}
	if err := query.Find(&items).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch gear catalog"})
	}
	return c.JSON(items)
}

func (s *GearService) UpdateGearItem(c *fiber.Ctx) error {
	var item models.GearItem
	if err := s.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "gear item not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching gear item"})
	}

	type Req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		RentalPrice *float64 `json:"rental_price"`
		Available   *bool    `json:"available"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.RentalPrice != nil && *req.RentalPrice < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "rental_price must be non-negative"})
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.RentalPrice != nil {
		item.RentalPrice = *req.RentalPrice
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := s.DB.Save(&item).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed", "cause": err.Error()})
	}
	return c.JSON(item)
}

func (s *GearService) DeleteGearItem(c *fiber.Ctx) error {
	id := c.Params("id")
	res := s.DB.Delete(&models.GearItem{}, "id = ?", id)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed", "cause": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "gear item not found"})
	}
	return c.JSON(fiber.Map{"message": "gear item deleted", "id": id})
}
