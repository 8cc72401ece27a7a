package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bosjol-tactical/handlers"
	"bosjol-tactical/middleware"
	"bosjol-tactical/models"
	"bosjol-tactical/services"
	"bosjol-tactical/utils"
	"bosjol-tactical/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB — event/gear photos only
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Player{},
		&models.MatchHistoryEntry{},
		&models.ExperienceAdjustment{},
		&models.Event{},
		&models.Signup{},
		&models.Attendee{},
		&models.Transaction{},
		&models.ScoringRule{},
		&models.Rank{},
		&models.Tier{},
		&models.GearItem{},
		&models.BadgeType{},
		&models.PlayerBadge{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	store := services.NewGormRecordStore(db)
	scoringService := services.NewScoringService(db)
	rankingService := services.NewRankingService(db)
	badgeService := services.NewBadgeService(db)
	eventService := services.NewEventService(db, store)
	rosterService := services.NewRosterService(db, rankingService, badgeService)
	gearService := services.NewGearService(db)
	ledgerService := services.NewLedgerService(db)
	finalizeService := services.NewFinalizeService(db, store, badgeService)

	if err := scoringService.SeedDefaultRules(); err != nil {
		log.Fatal("failed to seed scoring rules:", err)
	}
	if err := badgeService.SeedBadgeTypes(); err != nil {
		log.Fatal("failed to seed badge types:", err)
	}

	// --- CONFIGURE Sync Service Details ---
	membershipServiceURL := os.Getenv("MEMBERSHIP_SERVICE_URL")
	if membershipServiceURL == "" {
		log.Fatal("MEMBERSHIP_SERVICE_URL environment variable not set")
	}
	paymentProviderURL := os.Getenv("PAYMENT_PROVIDER_URL")
	if paymentProviderURL == "" {
		log.Fatal("PAYMENT_PROVIDER_URL environment variable not set")
	}
	clubServiceToken := os.Getenv("CLUB_SERVICE_TOKEN")
	if clubServiceToken == "" {
		log.Fatal("CLUB_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	memberSync := workers.NewMemberSyncWorker(db, membershipServiceURL, "/api/v1/public/profiles", clubServiceToken)
	memberSync.Start(ctx)

	paymentSync := workers.NewPaymentSyncWorker(db, paymentProviderURL, "/api/v1/payments/settled", clubServiceToken)
	paymentSync.Start(ctx)

	eventService.StartPublishScheduler()

	// ✅ Setup routes — Gateway auth global, user context per secured group
	handlers.SetupEventRoutes(app, eventService, finalizeService, ledgerService)
	handlers.SetupRosterRoutes(app, rosterService, badgeService)
	handlers.SetupConfigurationRoutes(app, scoringService, rankingService, gearService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Member Sync Worker running")
	log.Println("✅ Payment Sync Worker running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
