package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jumakrk/IST-MOBILE-APP/internal/authstate"
	"github.com/jumakrk/IST-MOBILE-APP/internal/config"
	"github.com/jumakrk/IST-MOBILE-APP/internal/googleauth"
	"github.com/jumakrk/IST-MOBILE-APP/internal/handler"
	"github.com/jumakrk/IST-MOBILE-APP/internal/mailer"
	"github.com/jumakrk/IST-MOBILE-APP/internal/middleware"
	"github.com/jumakrk/IST-MOBILE-APP/internal/notify"
	"github.com/jumakrk/IST-MOBILE-APP/internal/repository"
	"github.com/jumakrk/IST-MOBILE-APP/internal/service"
	"github.com/jumakrk/IST-MOBILE-APP/internal/utils"
	"github.com/jumakrk/IST-MOBILE-APP/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbPool.Close()
	log.Info().Msg("connected to PostgreSQL")

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatal().Err(err).Msg("failed to auto-migrate database")
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpHours)

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Warn().Msg("SMTP_HOST not set, account emails will only be logged")
		mail = &mailer.LogMailer{Log: log}
	}

	google := googleauth.Disabled()
	if cfg.GoogleClientID != "" {
		google = googleauth.New(cfg.GoogleClientID)
	} else {
		log.Warn().Msg("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	jobRepo := repository.NewJobRepository(dbPool)
	tokenRepo := repository.NewTokenRepository(dbPool)
	prefRepo := repository.NewPreferenceRepository(dbPool)

	// --- Shared signals ---
	states := authstate.NewHolder()
	jobRefresh := notify.NewBus()
	userChanges := notify.NewBus()

	// --- Initialize Services ---
	authService := service.NewAuthService(service.AuthServiceDeps{
		Users:        userRepo,
		Tokens:       tokenRepo,
		Prefs:        prefRepo,
		Mailer:       mail,
		Google:       google,
		JWT:          jwtUtil,
		States:       states,
		UsersChanged: userChanges,
		AdminEmails:  cfg.AdminEmails,
		BaseURL:      cfg.BaseURL,
		Log:          log,
	})
	jobService := service.NewJobService(jobRepo, jobRefresh, log)
	userService := service.NewUserService(userRepo, userChanges, log)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	jobHandler := handler.NewJobHandler(jobService, authService)
	userHandler := handler.NewUserHandler(userService)

	// --- Setup Gin Router ---
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	adminRoleMW := middleware.AdminMiddleware()

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup, jwtAuthMW)
	jobHandler.RegisterJobRoutes(apiGroup, jwtAuthMW, adminRoleMW)
	userHandler.RegisterUserRoutes(apiGroup, jwtAuthMW, adminRoleMW)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(context.Background()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}
