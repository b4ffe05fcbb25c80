package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"discovery-api/config"
	"discovery-api/controllers"
	"discovery-api/middleware"
	"discovery-api/monitor"
	"discovery-api/routes"
	"discovery-api/services"
)

func main() {
	settings := config.Load()

	logFile, logWriter := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	if settings.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := config.OpenDB(settings)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDB(db)

	storage, err := services.NewFileStorage(context.Background(), settings)
	if err != nil {
		log.Fatalf("Failed to initialise file storage: %v", err)
	}

	publisher := services.NewEventPublisher(settings.NATSURL)
	defer publisher.Close()

	mailer := config.NewMailer(settings)
	if !mailer.Configured() {
		log.Println("SMTP not configured; reset links and reminders are logged instead of mailed")
	}

	users := services.NewUserService(db)
	projects := services.NewProjectService(db, settings.DueSoonWindow)
	deliverables := services.NewDeliverableService(db, settings.DueSoonWindow)
	notifications := services.NewNotificationService(db, publisher)
	tokens := services.NewTokenIssuer(settings.JWTSecret, settings.JWTExpireHours)
	auth := services.NewAuthService(db, users, tokens, mailer, settings.FrontendURL)

	handler := &controllers.Handler{
		Users:          users,
		Projects:       projects,
		Deliverables:   deliverables,
		Notifications:  notifications,
		Auth:           auth,
		Storage:        storage,
		UploadMaxBytes: settings.UploadMaxBytes,
		PresignTTL:     15 * time.Minute,
	}

	if settings.GinMode == gin.ReleaseMode || settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(settings.CORSOrigins))
	router.Use(middleware.PrometheusMiddleware())

	// Register before SetupRoutes installs the 404 catch-all.
	monitor.Register(router, settings.MonitorToken, config.LogFilePath())
	routes.SetupRoutes(router, handler, middleware.AuthMiddleware(tokens, users))

	sweeper := services.NewDeadlineJob(db, deliverables, notifications, users, mailer, settings.SweepInterval, settings.ReminderWindow)
	sweeper.Start()
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:              ":" + settings.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Printf("Server starting on port %s (storage=%s)", settings.ServerPort, settings.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
