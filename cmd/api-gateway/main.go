package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/uniplex/academic-api/api/swagger"
	"github.com/uniplex/academic-api/internal/handler"
	"github.com/uniplex/academic-api/internal/middleware"
	"github.com/uniplex/academic-api/internal/models"
	"github.com/uniplex/academic-api/internal/repository"
	"github.com/uniplex/academic-api/internal/service"
	"github.com/uniplex/academic-api/pkg/cache"
	"github.com/uniplex/academic-api/pkg/config"
	"github.com/uniplex/academic-api/pkg/database"
	"github.com/uniplex/academic-api/pkg/jobs"
	"github.com/uniplex/academic-api/pkg/logger"
	corsmiddleware "github.com/uniplex/academic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniplex/academic-api/pkg/middleware/requestid"
	"github.com/uniplex/academic-api/pkg/storage"
)

// @title University Academic Records API
// @version 1.0.0
// @description Grading pipeline, academic standings and record books
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, settings cache disabled", "error", err)
		redisClient = nil
	}

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	exportSigner := storage.NewDownloadSigner(cfg.JWT.Secret, cfg.Exports.DownloadTTL)

	validate := validator.New()
	metricsService := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	importRepo := repository.NewGradeImportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "academic-api",
		Audience:           []string{"academic-api"},
		SingleSession:      false,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	profileService := service.NewProfileService(db, userRepo, logr)
	gradebookService := service.NewGradebookService(db, validate, logr)
	performanceService := service.NewPerformanceService(db, logr)
	standingService := service.NewStandingService(db, validate, logr)
	vocabularyService := service.NewVocabularyService(db, validate, logr)
	attendanceService := service.NewAttendanceService(db, validate, logr)
	recordService := service.NewRecordService(db, logr)
	structureService := service.NewStructureService(db, validate, logr)
	settingsService := service.NewSettingsService(settingsRepo, cacheRepo, metricsService, cfg.Settings.CacheTTL, logr)
	exportService := service.NewExportService(db, exportStorage, exportSigner, metricsService, logr)
	importService := service.NewImportService(db, importRepo, gradebookService, metricsService, logr, jobs.QueueConfig{
		Workers:    cfg.Imports.WorkerConcurrency,
		BufferSize: cfg.Imports.QueueBuffer,
		MaxRetries: cfg.Imports.WorkerRetries,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	importService.Start(rootCtx)
	defer importService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	profileHandler := handler.NewProfileHandler(profileService)
	sheetHandler := handler.NewGradeSheetHandler(gradebookService)
	gradeHandler := handler.NewGradeHandler(gradebookService)
	performanceHandler := handler.NewPerformanceHandler(performanceService)
	standingHandler := handler.NewStandingHandler(standingService)
	vocabularyHandler := handler.NewVocabularyHandler(vocabularyService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	recordHandler := handler.NewRecordHandler(recordService)
	structureHandler := handler.NewStructureHandler(structureService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	importHandler := handler.NewImportHandler(importService)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleDean, models.RoleMethodist)
	teaching := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleDean, models.RoleMethodist, models.RoleTeacher)
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	users := protected.Group("/users")
	{
		users.GET("", admins, userHandler.List)
		users.POST("", admins, userHandler.Create)
		users.GET("/:id", middleware.RBAC("SUPERADMIN", "ADMIN", "SELF"), userHandler.Get)
		users.PATCH("/:id", admins, userHandler.Update)
		users.DELETE("/:id", admins, userHandler.Delete)
	}

	profiles := protected.Group("/profiles")
	{
		profiles.GET("/me", profileHandler.MyProfile)
		profiles.GET("/:id", middleware.RBAC("SUPERADMIN", "ADMIN", "DEAN", "METHODIST", "TEACHER", "SELF"), profileHandler.UserProfile)
	}

	sheets := protected.Group("/grade-sheets")
	{
		sheets.POST("", staff, sheetHandler.Create)
		sheets.GET("", teaching, sheetHandler.List)
		sheets.GET("/:id", teaching, sheetHandler.Get)
		sheets.PUT("/:id/items/:itemId", teaching, sheetHandler.SaveItem)
		sheets.POST("/:id/items/:itemId/mark", teaching, sheetHandler.MarkItem)
		sheets.POST("/:id/status", staff, sheetHandler.Transition)
		sheets.POST("/:id/export", teaching, exportHandler.Sheet)
	}

	grades := protected.Group("/grades")
	{
		grades.POST("", teaching, gradeHandler.Upsert)
		grades.GET("", teaching, gradeHandler.List)
		grades.GET("/history", staff, gradeHandler.History)
		grades.POST("/:id/annul", staff, gradeHandler.Annul)
	}

	students := protected.Group("/students")
	{
		students.GET("/:id/performance", teaching, performanceHandler.Summary)
		students.GET("/:id/performance/history", teaching, performanceHandler.ListForStudent)
		students.POST("/:id/performance/recompute", staff, performanceHandler.Recompute)
		students.POST("/:id/performance/export", teaching, exportHandler.StudentSummary)
		students.GET("/:id/standing", teaching, standingHandler.Current)
		students.GET("/:id/standing/history", teaching, standingHandler.History)
		students.POST("/:id/standing/reevaluate", staff, standingHandler.Reevaluate)
		students.GET("/:id/debts", teaching, standingHandler.ListDebts)
		students.GET("/:id/retakes", teaching, standingHandler.ListRetakes)
		students.GET("/:id/attendance", teaching, attendanceHandler.StudentStats)
		students.GET("/:id/record", teaching, recordHandler.Get)
		students.POST("/:id/record/close", staff, recordHandler.Close)
	}

	protected.POST("/standings", staff, standingHandler.SetStanding)

	debts := protected.Group("/debts")
	{
		debts.POST("", staff, standingHandler.CreateDebt)
		debts.POST("/:id/extend", staff, standingHandler.ExtendDebt)
		debts.POST("/:id/waive", staff, standingHandler.WaiveDebt)
		debts.POST("/:id/expire", staff, standingHandler.ExpireDebt)
	}

	protected.POST("/retakes", staff, standingHandler.IssueRetake)

	attendance := protected.Group("")
	{
		attendance.POST("/attendance", teaching, attendanceHandler.Mark)
		attendance.GET("/classes/:id/journal", teaching, attendanceHandler.ClassJournal)
		attendance.POST("/classes/:id/journal/verify", staff, attendanceHandler.VerifyJournal)
	}

	vocabulary := protected.Group("")
	{
		vocabulary.GET("/grade-systems", teaching, vocabularyHandler.ListSystems)
		vocabulary.POST("/grade-systems", admins, vocabularyHandler.CreateSystem)
		vocabulary.GET("/grade-systems/:id/values", teaching, vocabularyHandler.ListValues)
		vocabulary.GET("/grade-systems/:id/resolve", teaching, vocabularyHandler.ValueForPercent)
		vocabulary.POST("/grade-values", admins, vocabularyHandler.CreateValue)
		vocabulary.GET("/grade-values/:id/convert", teaching, vocabularyHandler.Convert)
		vocabulary.GET("/grade-types", teaching, vocabularyHandler.ListTypes)
		vocabulary.POST("/grade-types", admins, vocabularyHandler.CreateType)
	}

	structure := protected.Group("")
	{
		structure.GET("/academic-years", structureHandler.ListAcademicYears)
		structure.POST("/academic-years", admins, structureHandler.CreateAcademicYear)
		structure.GET("/academic-years/:id/semesters", structureHandler.ListSemesters)
		structure.POST("/semesters", admins, structureHandler.CreateSemester)
		structure.GET("/subjects", structureHandler.ListSubjects)
		structure.POST("/subjects", admins, structureHandler.CreateSubject)
		structure.GET("/groups", structureHandler.ListGroups)
		structure.POST("/groups", admins, structureHandler.CreateGroup)
		structure.GET("/groups/:id/students", teaching, profileHandler.GroupRoster)
	}

	settings := protected.Group("/settings")
	{
		settings.GET("", settingsHandler.Current)
		settings.PATCH("", admins, settingsHandler.Update)
	}

	imports := protected.Group("/imports")
	{
		imports.POST("", staff, importHandler.Upload)
		imports.GET("", staff, importHandler.List)
		imports.GET("/:id", staff, importHandler.Get)
	}

	protected.GET("/exports/download", teaching, exportHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("failed to close redis", "error", err)
	}
}
