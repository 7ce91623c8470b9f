package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/redis/go-redis/v9"

	"github.com/labstack/echo/v4"

	"agendly/internal/caching"
	"agendly/internal/handlers"
	"agendly/internal/jobs/background"
	"agendly/internal/middleware"
	"agendly/internal/repositories"
	"agendly/internal/services"
	"agendly/pkg/database"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Base domain for subdomain tenant resolution
	baseDomain := os.Getenv("BASE_DOMAIN")
	if baseDomain == "" {
		log.Fatal("BASE_DOMAIN environment variable is required")
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; tokens will not survive restarts")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	mediaSvc, err := services.NewMediaService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize media service: %v", err)
	}
	if err := mediaSvc.EnsureBucketExists(ctx); err != nil {
		log.Printf("WARNING: Could not ensure media bucket exists: %v", err)
	}

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	professionalRepo := repositories.NewProfessionalRepo(pool)
	clientRepo := repositories.NewClientRepo(pool)
	offeringRepo := repositories.NewOfferingRepo(pool)
	availabilityRepo := repositories.NewAvailabilityRepo(pool)
	blackoutRepo := repositories.NewBlackoutRepo(pool)
	appointmentRepo := repositories.NewAppointmentRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisClient)

	// Create services
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc)
	professionalSvc := services.NewProfessionalService(professionalRepo)
	clientSvc := services.NewClientService(clientRepo)
	offeringSvc := services.NewOfferingService(offeringRepo, cacheSvc)
	blackoutSvc := services.NewBlackoutService(blackoutRepo)
	availabilitySvc := services.NewAvailabilityService(availabilityRepo, blackoutRepo, appointmentRepo)
	notificationSvc := services.NewNotificationService(notificationRepo, redisClient, cacheSvc)
	appointmentSvc := services.NewAppointmentService(appointmentRepo, professionalRepo, clientRepo, offeringRepo, notificationSvc)

	notificationSvc.Start()
	defer notificationSvc.Stop()

	// Background jobs: reminder sweep and notification retry drain
	jobScheduler, err := background.NewJobScheduler(appointmentRepo, professionalRepo, tenantRepo, notificationSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	if err := jobScheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer jobScheduler.Stop()

	// Prune read feed entries older than three months once a day.
	if err := jobScheduler.AddJob("notification-cleanup", 24*time.Hour, func(ctx context.Context) {
		cutoff := time.Now().UTC().AddDate(0, -3, 0)
		if err := notificationRepo.DeleteReadBefore(ctx, cutoff); err != nil {
			log.Printf("Notification cleanup failed: %v", err)
		}
	}, ctx); err != nil {
		log.Printf("Failed to register notification cleanup job: %v", err)
	}

	// Create handlers
	healthHandlers := handlers.NewHealthHandlers(pool, redisClient)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, mediaSvc)
	authHandlers := handlers.NewAuthHandlers(userRepo, cacheSvc, jwtSecret)
	jobHandlers := handlers.NewJobHandlers(jobScheduler)
	appointmentHandlers := handlers.NewAppointmentHandlers(appointmentSvc)
	availabilityHandlers := handlers.NewAvailabilityHandlers(availabilitySvc)
	blackoutHandlers := handlers.NewBlackoutHandlers(blackoutSvc)
	professionalHandlers := handlers.NewProfessionalHandlers(professionalSvc, mediaSvc)
	clientHandlers := handlers.NewClientHandlers(clientSvc)
	offeringHandlers := handlers.NewOfferingHandlers(offeringSvc)
	notificationHandlers := handlers.NewNotificationHandlers(notificationSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()

	// Health endpoints (no auth, any host)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// Platform surface: tenant signup and management on the base domain
	v1.GET("/plans", tenantHandlers.GetPlans)
	v1.GET("/jobs", jobHandlers.GetJobStatus)
	platform := v1.Group("/tenants")
	platform.POST("", tenantHandlers.CreateTenant)
	platform.GET("", tenantHandlers.ListTenants)
	platform.GET("/:id", tenantHandlers.GetTenant)
	platform.PUT("/:id", tenantHandlers.UpdateTenant)
	platform.DELETE("/:id", tenantHandlers.DeactivateTenant)
	platform.POST("/:id/logo", tenantHandlers.UploadLogo)

	// Tenant surface: everything below resolves the tenant from the subdomain
	tenantResolver := middleware.NewTenantResolver(baseDomain)
	tenant := v1.Group("", tenantResolver.Middleware(tenantSvc))

	tenant.POST("/auth/login", authHandlers.Login)
	tenant.POST("/auth/register", authHandlers.Register)

	// Open slots are queryable without auth so booking pages can render them
	tenant.GET("/availability", availabilityHandlers.GetOpenSlots)

	protected := v1.Group("", tenantResolver.Middleware(tenantSvc),
		echojwt.WithConfig(middleware.JWTConfig(jwtSecret)),
		middleware.UserContext(userRepo))

	protected.POST("/appointments", appointmentHandlers.CreateAppointment)
	protected.GET("/appointments", appointmentHandlers.ListAppointments)
	protected.GET("/appointments/:id", appointmentHandlers.GetAppointment)
	protected.PUT("/appointments/:id/reschedule", appointmentHandlers.RescheduleAppointment)
	protected.PATCH("/appointments/:id", appointmentHandlers.UpdateAppointmentStatus)
	protected.POST("/appointments/:id/cancel", appointmentHandlers.CancelAppointment)

	protected.GET("/professionals", professionalHandlers.ListProfessionals)
	protected.POST("/professionals", professionalHandlers.CreateProfessional)
	protected.GET("/professionals/:id", professionalHandlers.GetProfessional)
	protected.PUT("/professionals/:id", professionalHandlers.UpdateProfessional)
	protected.DELETE("/professionals/:id", professionalHandlers.DeleteProfessional)
	protected.POST("/professionals/:id/avatar", professionalHandlers.UploadAvatar)
	protected.GET("/professionals/:id/availability", availabilityHandlers.GetWeek)
	protected.PUT("/professionals/:id/availability", availabilityHandlers.ReplaceWeek)
	protected.GET("/professionals/:id/blackouts", blackoutHandlers.ListBlackouts)
	protected.POST("/professionals/:id/blackouts", blackoutHandlers.CreateBlackout)
	protected.DELETE("/professionals/:id/blackouts/:blackoutId", blackoutHandlers.DeleteBlackout)

	protected.GET("/clients", clientHandlers.ListClients)
	protected.POST("/clients", clientHandlers.CreateClient)
	protected.GET("/clients/:id", clientHandlers.GetClient)
	protected.PUT("/clients/:id", clientHandlers.UpdateClient)
	protected.DELETE("/clients/:id", clientHandlers.DeleteClient)

	protected.GET("/offerings", offeringHandlers.ListOfferings)
	protected.POST("/offerings", offeringHandlers.CreateOffering)
	protected.GET("/offerings/:id", offeringHandlers.GetOffering)
	protected.PUT("/offerings/:id", offeringHandlers.UpdateOffering)
	protected.DELETE("/offerings/:id", offeringHandlers.DeleteOffering)

	protected.GET("/notifications", notificationHandlers.ListNotifications)
	protected.POST("/notifications/:id/read", notificationHandlers.MarkRead)
	protected.PUT("/notifications/webhook", notificationHandlers.SetWebhook)
	protected.DELETE("/notifications/webhook", notificationHandlers.ClearWebhook)
	protected.POST("/notifications/broadcast", notificationHandlers.Broadcast)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Agendly server v%s starting on port %d (base domain %s)", version, port, baseDomain)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
