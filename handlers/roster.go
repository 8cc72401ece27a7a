package handlers

import (
	"bosjol-tactical/middleware"
	"bosjol-tactical/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRosterRoutes(app *fiber.App, rosterService *services.RosterService, badgeService *services.BadgeService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/players", rosterService.GetAllPlayers)
	secured.Get("/players/:id", rosterService.GetPlayerByID)
	secured.Get("/players/:id/progression", rosterService.GetPlayerProgression)
	secured.Get("/players/:id/history", rosterService.GetPlayerHistory)
	secured.Get("/players/:id/adjustments", rosterService.GetPlayerAdjustments)
	secured.Get("/players/:id/badges", badgeService.GetPlayerBadges)

	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/players", rosterService.CreatePlayer)
	admin.Put("/players/:id", rosterService.UpdatePlayer)
	admin.Delete("/players/:id", rosterService.DeletePlayer)
	admin.Post("/xp/grant", rosterService.GrantExperience)
}
