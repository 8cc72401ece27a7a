package handlers

import (
	"bosjol-tactical/middleware"
	"bosjol-tactical/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService, finalizeService *services.FinalizeService, ledgerService *services.LedgerService) {
	// 🔓 Public routes — published events only
	app.Get("/events/upcoming", eventService.GetUpcomingEvents)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Event CRUD + publish lifecycle
	secured.Post("/events", eventService.CreateEvent)
	secured.Get("/events", eventService.GetAllEvents)
	secured.Get("/events/:id", eventService.GetEventByID)
	secured.Put("/events/:id", eventService.UpdateEvent)
	secured.Delete("/events/:id", eventService.DeleteEvent)
	secured.Post("/events/:id/publish/now", eventService.PublishNow)
	secured.Post("/events/:id/publish/schedule", eventService.SchedulePublish)
	secured.Post("/events/:id/publish/cancel", eventService.CancelScheduledPublish)

	// Signups (intent to attend)
	secured.Post("/events/:id/signups", eventService.SignUp)
	secured.Get("/events/:id/signups", eventService.GetEventSignups)
	secured.Delete("/events/:id/signups/:player_id", eventService.Withdraw)

	// Attendance lifecycle
	secured.Post("/events/:id/attendees/:player_id/check-in", eventService.CheckIn)
	secured.Post("/events/:id/attendees/:player_id/check-out", eventService.CheckOut)
	secured.Patch("/events/:id/attendees/:player_id/payment", eventService.SetPaymentStatus)

	// Live stats while the event is open
	secured.Post("/events/:id/live-stats", eventService.SubmitLiveStat)

	// 🔒 Admin-only: finalization and the ledger
	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/events/:id/finalize", finalizeService.FinalizeEvent)
	admin.Get("/transactions", ledgerService.GetTransactions)
	admin.Get("/events/:id/revenue", ledgerService.GetEventRevenue)
}
