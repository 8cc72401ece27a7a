package services

import (
	"log"
	"time"

	"bosjol-tactical/models"

	"github.com/go-co-op/gocron/v2"
)

// StartPublishScheduler publishes draft events whose schedule has passed.
// Runs every minute for the service's lifetime.
func (s *EventService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var events []models.Event
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_schedule IS NOT NULL AND publish_schedule <= ?",
				models.EventStatusDraft, now).
				Find(&events).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, e := range events {
				e.Status = models.EventStatusUpcoming
				e.PublishedAt = &now
				e.PublishSchedule = nil
				if err := s.DB.Save(&e).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish event %s: %v", e.ID, err)
				} else {
					log.Printf("✅ Auto-published event: %s", e.Name)
				}
			}
		}),
	)
}
