package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/config"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/handlers"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/jobs"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/logging"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
	"github.com/nanonroses/rpa-team-manager-sub000/pkg/auth"
)

func main() {
	godotenv.Load()
	logging.Init()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET is required")
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("💾 Database ready at %s", cfg.DatabasePath)

	jwtAuth, err := auth.NewJWTAuth(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	if err != nil {
		log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
	}

	// Services
	userSvc := services.NewUserService(db)
	authSvc := services.NewAuthService(db, jwtAuth, userSvc)
	settingsSvc := services.NewSettingsService(db)
	projectSvc := services.NewProjectService(db)
	taskSvc := services.NewTaskService(db)
	ideaSvc := services.NewIdeaService(db)
	financialSvc := services.NewFinancialService(db, settingsSvc)
	timeSvc := services.NewTimeEntryService(db, financialSvc)
	supportSvc := services.NewSupportService(db)
	pmoSvc := services.NewPMOService(db)
	excelSvc := services.NewExcelService(pmoSvc)
	fileSvc, err := services.NewFileService(db, cfg.UploadDir, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("❌ Failed to initialize file storage: %v", err)
	}

	seedAdmin(userSvc)

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc, userSvc)
	userHandler := handlers.NewUserHandler(userSvc)
	projectHandler := handlers.NewProjectHandler(projectSvc)
	taskHandler := handlers.NewTaskHandler(taskSvc)
	ideaHandler := handlers.NewIdeaHandler(ideaSvc)
	timeHandler := handlers.NewTimeEntryHandler(timeSvc)
	supportHandler := handlers.NewSupportHandler(supportSvc)
	pmoHandler := handlers.NewPMOHandler(pmoSvc, excelSvc)
	financialHandler := handlers.NewFinancialHandler(financialSvc)
	fileHandler := handlers.NewFileHandler(fileSvc)
	settingsHandler := handlers.NewSettingsHandler(settingsSvc)
	healthHandler := handlers.NewHealthHandler(db)

	app := fiber.New(fiber.Config{
		AppName:      "RPA Team Manager",
		ErrorHandler: apperrors.ErrorHandler,
		BodyLimit:    (cfg.MaxUploadSizeMB + 1) * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	if !cfg.IsProduction() {
		app.Use(logger.New())
	}

	prometheus := fiberprometheus.New("rpa-team-manager")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Use(middleware.RateLimit(middleware.GlobalRateLimit))

	app.Get("/health", healthHandler.Health)

	api := app.Group("/api")

	// Public auth endpoints, strictly rate limited
	authGroup := api.Group("/auth")
	authGroup.Post("/login", middleware.RateLimit(middleware.AuthRateLimit), authHandler.Login)
	authGroup.Post("/refresh", middleware.RateLimit(middleware.AuthRateLimit), authHandler.Refresh)

	// Everything below requires a valid token and live session
	protected := api.Use(middleware.JWTAuth(jwtAuth, authSvc))
	writeLimit := middleware.RateLimit(middleware.WriteRateLimit)

	// Registered after the auth middleware, so these require a live session
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authHandler.Me)
	authGroup.Post("/change-password", authHandler.ChangePassword)

	// Users (admin only)
	users := protected.Group("/users", middleware.RequireRoles())
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.Get)
	users.Post("/", writeLimit, userHandler.Create)
	users.Put("/:id", writeLimit, userHandler.Update)

	// Projects
	projects := protected.Group("/projects")
	projects.Get("/", projectHandler.List)
	projects.Get("/:id", projectHandler.Get)
	projects.Post("/", writeLimit, middleware.RequireRoles(models.RoleTeamLead), projectHandler.Create)
	projects.Put("/:id", writeLimit, middleware.RequireRoles(models.RoleTeamLead), projectHandler.Update)
	projects.Delete("/:id", writeLimit, middleware.RequireRoles(models.RoleTeamLead), projectHandler.Delete)
	projects.Get("/:id/assignments", projectHandler.GetAssignments)
	projects.Put("/:id/assignments", writeLimit, middleware.RequireRoles(models.RoleTeamLead), projectHandler.SetAssignments)
	projects.Get("/:id/board", taskHandler.GetBoard)
	projects.Get("/:id/time-summary", timeHandler.ProjectSummary)

	// Tasks
	tasks := protected.Group("/tasks")
	tasks.Post("/", writeLimit, taskHandler.CreateTask)
	tasks.Get("/:id", taskHandler.GetTask)
	tasks.Put("/:id", writeLimit, taskHandler.UpdateTask)
	tasks.Post("/:id/move", writeLimit, taskHandler.MoveTask)
	tasks.Delete("/:id", writeLimit, taskHandler.DeleteTask)

	// Ideas
	ideas := protected.Group("/ideas")
	ideas.Get("/", ideaHandler.List)
	ideas.Get("/:id", ideaHandler.Get)
	ideas.Post("/", writeLimit, ideaHandler.Create)
	ideas.Put("/:id", writeLimit, ideaHandler.Update)
	ideas.Post("/:id/vote", writeLimit, ideaHandler.Vote)
	ideas.Delete("/:id/vote", writeLimit, ideaHandler.Unvote)
	ideas.Delete("/:id", writeLimit, middleware.RequireRoles(models.RoleTeamLead), ideaHandler.Delete)

	// Time tracking
	timeEntries := protected.Group("/time-entries")
	timeEntries.Get("/", timeHandler.List)
	timeEntries.Post("/", writeLimit, timeHandler.Create)
	timeEntries.Put("/:id", writeLimit, timeHandler.Update)
	timeEntries.Delete("/:id", writeLimit, timeHandler.Delete)

	// Support tickets
	support := protected.Group("/support/tickets")
	support.Get("/", supportHandler.List)
	support.Get("/:id", supportHandler.Get)
	support.Post("/", writeLimit, supportHandler.Create)
	support.Put("/:id", writeLimit, middleware.RequireRoles(models.RoleTeamLead, models.RoleITSupport), supportHandler.Update)
	support.Get("/:id/responses", supportHandler.ListResponses)
	support.Post("/:id/responses", writeLimit, supportHandler.AddResponse)

	// PMO
	pmo := protected.Group("/pmo")
	pmo.Get("/dashboard", pmoHandler.Dashboard)
	pmo.Get("/projects/:id/milestones", pmoHandler.ListMilestones)
	pmo.Get("/projects/:id/metrics", pmoHandler.GetMetrics)
	pmo.Get("/milestones/:id", pmoHandler.GetMilestone)

	pmoWrite := middleware.RequireRoles(models.RoleTeamLead, models.RoleRPAOperations)
	pmo.Post("/milestones", writeLimit, pmoWrite, pmoHandler.CreateMilestone)
	pmo.Post("/milestones/batch", writeLimit, pmoWrite, pmoHandler.BatchCreateMilestones)
	// Registered before /milestones/:id so "batch" is not parsed as an id
	pmo.Delete("/milestones/batch", writeLimit, pmoWrite, pmoHandler.BatchDeleteMilestones)
	pmo.Put("/milestones/:id", writeLimit, pmoWrite, pmoHandler.UpdateMilestone)
	pmo.Delete("/milestones/:id", writeLimit, pmoWrite, pmoHandler.DeleteMilestone)
	pmo.Post("/projects/:id/milestones/import", writeLimit, pmoWrite, pmoHandler.ImportMilestones)
	pmo.Put("/projects/:id/metrics", writeLimit, pmoWrite, pmoHandler.UpsertMetrics)

	// Financials (cost data is salary-derived, so access stays narrow)
	financial := protected.Group("/financial", middleware.RequireRoles(models.RoleTeamLead))
	financial.Post("/cost-rates", writeLimit, financialHandler.CreateCostRate)
	financial.Get("/users/:id/cost-rates", financialHandler.ListCostRates)
	financial.Get("/projects/:id/roi", financialHandler.ComputeROI)
	financial.Get("/projects/:id/snapshot", financialHandler.GetSnapshot)
	financial.Get("/snapshots", financialHandler.ListSnapshots)

	// Files
	files := protected.Group("/files")
	files.Post("/", writeLimit, fileHandler.Upload)
	files.Get("/by-entity/:type/:id", fileHandler.ListByEntity)
	files.Get("/:id", fileHandler.Download)
	files.Post("/:id/associations", writeLimit, fileHandler.Associate)
	files.Delete("/:id", writeLimit, fileHandler.Delete)

	// Settings (admin only)
	settings := protected.Group("/settings")
	settings.Get("/", settingsHandler.List)
	settings.Put("/:key", writeLimit, middleware.RequireRoles(), settingsHandler.Update)

	// Background jobs
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	if err := jobs.RegisterSessionCleanup(scheduler, authSvc); err != nil {
		log.Fatalf("❌ Failed to register session cleanup job: %v", err)
	}
	if err := jobs.RegisterUFRateRefresh(scheduler, settingsSvc); err != nil {
		log.Fatalf("❌ Failed to register UF rate refresh job: %v", err)
	}
	if err := jobs.RegisterSnapshotRefresh(scheduler, projectSvc, financialSvc); err != nil {
		log.Fatalf("❌ Failed to register snapshot refresh job: %v", err)
	}
	scheduler.Start()

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down...")
		if err := scheduler.Stop(); err != nil {
			log.Printf("⚠️ Scheduler shutdown error: %v", err)
		}
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 RPA Team Manager listening on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}

// seedAdmin creates the bootstrap admin account on an empty user table.
// Credentials come from env vars; without them the instance starts with no
// way to log in, so the default only applies outside production.
func seedAdmin(userSvc *services.UserService) {
	ctx := context.Background()

	n, err := userSvc.Count(ctx)
	if err != nil || n > 0 {
		return
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		if os.Getenv("ENVIRONMENT") == "production" {
			log.Println("⚠️ No users exist and ADMIN_EMAIL/ADMIN_PASSWORD are unset")
			return
		}
		email = "admin@rpa.local"
		password = "Admin1234"
	}

	_, err = userSvc.Create(ctx, &models.CreateUserRequest{
		Email:    email,
		FullName: "Administrator",
		Password: password,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		log.Printf("⚠️ Failed to seed admin user: %v", err)
		return
	}
	log.Printf("👤 Seeded admin user: %s", email)
}
