package services

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"bosjol-tactical/models"
	"bosjol-tactical/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type EventService struct {
	DB         *gorm.DB
	Reconciler *Reconciler
}

func NewEventService(db *gorm.DB, store RecordStore) *EventService {
	return &EventService{DB: db, Reconciler: NewReconciler(store)}
}

func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	// --- Parse form values ---
	name := c.FormValue("name")
	description := c.FormValue("description")
	location := c.FormValue("location")
	fieldRules := c.FormValue("field_rules")
	startTimeStr := c.FormValue("start_time")
	endTimeStr := c.FormValue("end_time")
	entryFeeStr := c.FormValue("entry_fee")
	baseXPStr := c.FormValue("base_experience")
	maxAttendeesStr := c.FormValue("max_attendees")
	publishScheduleStr := c.FormValue("publish_schedule")

	// --- Validation ---
	if name == "" || startTimeStr == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and start_time are required"})
	}

	startTime, err := time.Parse(time.RFC3339, startTimeStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_time (use RFC3339)"})
	}
	var endTime time.Time
	if endTimeStr != "" {
		endTime, err = time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_time (use RFC3339)"})
		}
	}

	entryFee := 0.0
	if entryFeeStr != "" {
		if f, err := strconv.ParseFloat(entryFeeStr, 64); err == nil && f >= 0 {
			entryFee = f
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "entry_fee must be a non-negative number"})
		}
	}

	var baseXP int64
	if baseXPStr != "" {
		if n, err := strconv.ParseInt(baseXPStr, 10, 64); err == nil && n >= 0 {
			baseXP = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "base_experience must be a non-negative integer"})
		}
	}

	maxAttendees := 0
	if maxAttendeesStr != "" {
		if n, err := strconv.Atoi(maxAttendeesStr); err == nil && n >= 0 {
			maxAttendees = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "max_attendees must be a non-negative integer"})
		}
	}

	var publishSchedule *time.Time
	if publishScheduleStr != "" {
		scheduledTime, err := time.Parse(time.RFC3339, publishScheduleStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid publish_schedule (use RFC3339)"})
		}
		publishSchedule = &scheduledTime
	}

	// --- Handle main photo → R2 ---
	var mainPhotoURL string
	if mainPhoto, err := c.FormFile("main_photo"); err == nil && mainPhoto.Size > 0 {
		ext := filepath.Ext(mainPhoto.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "events/main/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(mainPhoto, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload main photo"})
		}
		mainPhotoURL = url
	}

	event := &models.Event{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     description,
		Location:        location,
		FieldRules:      fieldRules,
		StartTime:       startTime,
		EndTime:         endTime,
		EntryFee:        entryFee,
		BaseExperience:  baseXP,
		MaxAttendees:    maxAttendees,
		MainPhotoURL:    mainPhotoURL,
		PublishSchedule: publishSchedule,
		Status:          models.EventStatusDraft, // always starts as draft
	}
	event.Slug = slug.Make(name) + "-" + event.ID[:8]

	if err := s.DB.Create(event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}
	return c.Status(201).JSON(event)
}

func (s *EventService) GetAllEvents(c *fiber.Ctx) error {
	var events []models.Event
	if err := s.DB.Preload("Attendees").Order("start_time DESC").Find(&events).Error; err != nil {
		log.Printf("ERROR fetching events: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	for i := range events {
		events[i].AttendeeCount = int64(len(events[i].Attendees))
		s.DB.Model(&models.Signup{}).Where("event_id = ?", events[i].ID).Count(&events[i].SignupCount)
	}
	return c.JSON(events)
}

func (s *EventService) GetUpcomingEvents(c *fiber.Ctx) error {
	var events []models.Event
	err := s.DB.Where("status = ?", models.EventStatusUpcoming).
		Order("start_time ASC").
		Find(&events).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	return c.JSON(events)
}

func (s *EventService) GetEventByID(c *fiber.Ctx) error {
	var event models.Event
	if err := s.DB.Preload("Attendees").First(&event, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}
	event.AttendeeCount = int64(len(event.Attendees))
	s.DB.Model(&models.Signup{}).Where("event_id = ?", event.ID).Count(&event.SignupCount)
	return c.JSON(event)
}

// UpdateEvent hand-edits mutable fields. Allowed even on completed events,
// but scoring and ledger entries are never regenerated from here.
func (s *EventService) UpdateEvent(c *fiber.Ctx) error {
	var event models.Event
	if err := s.DB.First(&event, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	type Req struct {
		Name                 *string             `json:"name"`
		Description          *string             `json:"description"`
		Location             *string             `json:"location"`
		FieldRules           *string             `json:"field_rules"`
		StartTime            *time.Time          `json:"start_time"`
		EndTime              *time.Time          `json:"end_time"`
		EntryFee             *float64            `json:"entry_fee"`
		BaseExperience       *int64              `json:"base_experience"`
		MaxAttendees         *int                `json:"max_attendees"`
		ExperienceOverrides  *map[string]int64   `json:"experience_overrides"`
		RentalPriceOverrides *map[string]float64 `json:"rental_price_overrides"`
		EligibleGearIDs      *[]string           `json:"eligible_gear_ids"`
		EligibleBadgeIDs     *[]string           `json:"eligible_badge_ids"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}

	// Validation happens before anything mutates: bad input leaves prior
	// state untouched.
	if req.EntryFee != nil && *req.EntryFee < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "entry_fee must be non-negative"})
	}
	if req.BaseExperience != nil && *req.BaseExperience < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "base_experience must be non-negative"})
	}
	if req.MaxAttendees != nil && *req.MaxAttendees < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "max_attendees must be non-negative"})
	}
	if req.RentalPriceOverrides != nil {
		for itemID, price := range *req.RentalPriceOverrides {
			if price < 0 {
				return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("rental price override for %s must be non-negative", itemID)})
			}
		}
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.FieldRules != nil {
		event.FieldRules = *req.FieldRules
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.EntryFee != nil {
		event.EntryFee = *req.EntryFee
	}
	if req.BaseExperience != nil {
		event.BaseExperience = *req.BaseExperience
	}
	if req.MaxAttendees != nil {
		event.MaxAttendees = *req.MaxAttendees
	}
	if req.ExperienceOverrides != nil {
		event.ExperienceOverrides = *req.ExperienceOverrides
	}
	if req.RentalPriceOverrides != nil {
		event.RentalPriceOverrides = *req.RentalPriceOverrides
	}
	if req.EligibleGearIDs != nil {
		event.EligibleGearIDs = *req.EligibleGearIDs
	}
	if req.EligibleBadgeIDs != nil {
		event.EligibleBadgeIDs = *req.EligibleBadgeIDs
	}

	if err := s.DB.Save(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed", "cause": err.Error()})
	}
	return c.JSON(event)
}

// DeleteEvent removes an event plus its attendees and signups. Destructive:
// gated behind an explicit confirm parameter.
func (s *EventService) DeleteEvent(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(400).JSON(fiber.Map{"error": "deleting an event requires ?confirm=true"})
	}
	id := c.Params("id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Attendee{}, "event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Signup{}, "event_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Event{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed", "cause": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "event deleted", "id": id})
}

// --- Publish lifecycle ---

func (s *EventService) PublishNow(c *fiber.Ctx) error {
	return s.transitionToUpcoming(c)
}

func (s *EventService) SchedulePublish(c *fiber.Ctx) error {
	type Req struct {
		PublishAt time.Time `json:"publish_at"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil || req.PublishAt.IsZero() {
		return c.Status(400).JSON(fiber.Map{"error": "publish_at (RFC3339) is required"})
	}
	var event models.Event
	if err := s.DB.First(&event, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}
	if event.Status != models.EventStatusDraft {
		return c.Status(400).JSON(fiber.Map{"error": "only draft events can be scheduled"})
	}
	event.PublishSchedule = &req.PublishAt
	if err := s.DB.Save(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(event)
}

func (s *EventService) CancelScheduledPublish(c *fiber.Ctx) error {
	var event models.Event
	if err := s.DB.First(&event, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}
	event.PublishSchedule = nil
	if err := s.DB.Save(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(event)
}

func (s *EventService) transitionToUpcoming(c *fiber.Ctx) error {
	var event models.Event
	if err := s.DB.First(&event, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}
	if event.Status == models.EventStatusCompleted {
		return c.Status(400).JSON(fiber.Map{"error": "event is already completed"})
	}
	now := time.Now()
	event.Status = models.EventStatusUpcoming
	event.PublishedAt = &now
	event.PublishSchedule = nil
	if err := s.DB.Save(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	log.Printf("✅ Event published: %s", event.Name)
	return c.JSON(event)
}

// --- Signups (intent to attend) ---

func (s *EventService) SignUp(c *fiber.Ctx) error {
	eventID := c.Params("id")

	type Req struct {
		PlayerID         string   `json:"player_id"`
		RequestedItemIDs []string `json:"requested_item_ids,omitempty"`
		Note             string   `json:"note,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.PlayerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player_id is required"})
	}

	var event models.Event
	if err := s.DB.Preload("Attendees").First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}
	if event.Status != models.EventStatusUpcoming {
		return c.Status(400).JSON(fiber.Map{"error": "event is not open for signups"})
	}

	var player models.Player
	if err := s.DB.First(&player, "id = ?", req.PlayerID).Error; err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "player not found"})
	}

	// Already checked in: the signup would break mutual exclusivity.
	for _, a := range event.Attendees {
		if a.PlayerID == req.PlayerID {
			return c.Status(409).JSON(fiber.Map{"error": "player is already checked in"})
		}
	}

	var existing models.Signup
	if err := s.DB.Where("event_id = ? AND player_id = ?", eventID, req.PlayerID).First(&existing).Error; err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "player already signed up", "signup": existing})
	}

	if event.MaxAttendees > 0 {
		var count int64
		s.DB.Model(&models.Signup{}).Where("event_id = ?", eventID).Count(&count)
		if int(count)+len(event.Attendees) >= event.MaxAttendees {
			return c.Status(403).JSON(fiber.Map{"error": "event is full"})
		}
	}

	signup := models.Signup{
		ID:               models.SignupID(eventID, req.PlayerID),
		EventID:          eventID,
		PlayerID:         req.PlayerID,
		RequestedItemIDs: req.RequestedItemIDs,
		Note:             req.Note,
	}
	if err := s.DB.Create(&signup).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed", "cause": err.Error()})
	}
	return c.Status(201).JSON(signup)
}

func (s *EventService) Withdraw(c *fiber.Ctx) error {
	eventID := c.Params("id")
	playerID := c.Params("player_id")
	res := s.DB.Delete(&models.Signup{}, "event_id = ? AND player_id = ?", eventID, playerID)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed", "cause": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "signup not found"})
	}
	return c.JSON(fiber.Map{"message": "signup withdrawn"})
}

func (s *EventService) GetEventSignups(c *fiber.Ctx) error {
	var signups []models.Signup
	if err := s.DB.Where("event_id = ?", c.Params("id")).Order("created_at ASC").Find(&signups).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch signups"})
	}
	return c.JSON(signups)
}

// --- Attendance (check-in / check-out / payment) ---

func (s *EventService) CheckIn(c *fiber.Ctx) error {
	eventID := c.Params("id")
	playerID := c.Params("player_id")

	var event models.Event
	if err := s.DB.Preload("Attendees").First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	var signup *models.Signup
	var found models.Signup
	if err := s.DB.Where("event_id = ? AND player_id = ?", eventID, playerID).First(&found).Error; err == nil {
		signup = &found
	}

	attendee, result := s.Reconciler.CheckIn(&event, signup)
	if !result.Applied {
		// No signup for this player: deliberate no-op, not an error.
		return c.JSON(fiber.Map{"checked_in": false})
	}
	resp := fiber.Map{"checked_in": true, "attendee": attendee}
	if result.Err != nil {
		resp["write_failed"] = result.WriteFailed
		resp["cause"] = result.Err.Error()
	}
	return c.JSON(resp)
}

func (s *EventService) CheckOut(c *fiber.Ctx) error {
	eventID := c.Params("id")
	playerID := c.Params("player_id")

	var event models.Event
	if err := s.DB.Preload("Attendees").First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	signup, result := s.Reconciler.CheckOut(&event, playerID)
	if !result.Applied {
		return c.JSON(fiber.Map{"checked_out": false})
	}
	resp := fiber.Map{"checked_out": true, "signup": signup}
	if result.Err != nil {
		resp["write_failed"] = result.WriteFailed
		resp["cause"] = result.Err.Error()
	}
	return c.JSON(resp)
}

func (s *EventService) SetPaymentStatus(c *fiber.Ctx) error {
	eventID := c.Params("id")
	playerID := c.Params("player_id")

	type Req struct {
		PaymentStatus string `json:"payment_status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	switch req.PaymentStatus {
	case models.PaymentUnpaid, models.PaymentPaidCard, models.PaymentPaidCash:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "payment_status must be one of unpaid, paid_card, paid_cash"})
	}

	var event models.Event
	if err := s.DB.Preload("Attendees").First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	attendee, result := s.Reconciler.SetPaymentStatus(&event, playerID, req.PaymentStatus)
	if !result.Applied {
		return c.JSON(fiber.Map{"updated": false})
	}
	if result.Err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed", "cause": result.Err.Error()})
	}
	return c.JSON(fiber.Map{"updated": true, "attendee": attendee})
}

// --- Live stats ---

// SubmitLiveStat sets one counter for one attendee while the event is open.
// Values clamp to zero; unknown fields are rejected before anything mutates.
func (s *EventService) SubmitLiveStat(c *fiber.Ctx) error {
	eventID := c.Params("id")

	type Req struct {
		PlayerID string `json:"player_id"`
		Field    string `json:"field"`
		Value    int    `json:"value"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.PlayerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player_id is required"})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}
	if event.Status == models.EventStatusCompleted {
		return c.Status(400).JSON(fiber.Map{"error": "event is finalized; live stats are frozen"})
	}

	stats, ok := ApplyLiveStat(event.LiveStats, req.PlayerID, req.Field, req.Value)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "field must be one of kills, deaths, headshots"})
	}
	event.LiveStats = stats

	if err := s.DB.Save(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed", "cause": err.Error()})
	}
	return c.JSON(fiber.Map{"player_id": req.PlayerID, "stats": event.LiveStats[req.PlayerID]})
}
