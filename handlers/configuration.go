package handlers

import (
	"bosjol-tactical/middleware"
	"bosjol-tactical/services"

	"github.com/gofiber/fiber/v2"
)

// SetupConfigurationRoutes wires the scoring rule table, the rank ladder and
// the gear catalog. Reads are open to any authenticated member; writes are
// admin-only.
func SetupConfigurationRoutes(app *fiber.App, scoringService *services.ScoringService, rankingService *services.RankingService, gearService *services.GearService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/scoring-rules", scoringService.GetAllRules)
	secured.Get("/ranks", rankingService.GetLadder)
	secured.Get("/ranks/validate", rankingService.ValidateLadderEndpoint)
	secured.Get("/gear", gearService.GetAllGear)

	admin := secured.Group("/admin", middleware.RequireRole("admin"))

	admin.Post("/scoring-rules", scoringService.CreateRule)
	admin.Put("/scoring-rules/:id", scoringService.UpdateRule)
	admin.Delete("/scoring-rules/:id", scoringService.DeleteRule)

	admin.Post("/ranks", rankingService.CreateRank)
	admin.Put("/ranks/:id", rankingService.UpdateRank)
	admin.Delete("/ranks/:id", rankingService.DeleteRank)
	admin.Post("/ranks/:id/tiers", rankingService.CreateTier)
	admin.Put("/tiers/:tier_id", rankingService.UpdateTier)
	admin.Delete("/tiers/:tier_id", rankingService.DeleteTier)

	admin.Post("/gear", gearService.CreateGearItem)
	admin.Put("/gear/:id", gearService.UpdateGearItem)
	admin.Delete("/gear/:id", gearService.DeleteGearItem)
}
