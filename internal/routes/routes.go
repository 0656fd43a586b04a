package routes

import (
	"ashram-app-server/internal/config"
	"ashram-app-server/internal/handlers"
	"ashram-app-server/internal/middleware"
	"ashram-app-server/internal/models"
	"ashram-app-server/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	// Initialize services
	notifier := services.NewNotifier(db, logger)
	queueService := services.NewQueueService(db, cfg, notifier, logger)
	locations := services.DefaultLocationRegistry(cfg)
	checkInService := services.NewCheckInService(db, cfg, queueService, locations, notifier, logger)
	sessionService := services.NewSessionService(db, logger)
	remedyService := services.NewRemedyService(db, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, queueService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	queueHandler := handlers.NewQueueHandler(db, queueService)
	consultationHandler := handlers.NewConsultationHandler(sessionService)
	remedyHandler := handlers.NewRemedyHandler(db, remedyService, sessionService)
	notificationHandler := handlers.NewNotificationHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Guruji directory - accessible by all authenticated users for booking
			userRoutes.GET("/gurujis", userHandler.GetGurujis)

			// Devotee list for staff dashboards
			userRoutes.GET("/devotees", userHandler.GetDevotees)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin)) // Only Admins
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleUser, models.RoleCoordinator, models.RoleAdmin), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)   // Logic inside handler differentiates by role
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)   // Authorization inside handler
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}

		// Check-in: devotees scan the ashram QR code (or type a location code)
		private.POST("/checkin", middleware.RoleAuthMiddleware(models.RoleUser), checkInHandler.ProcessCheckIn)

		// Queue routes
		queueRoutes := private.Group("/queue")
		{
			// Polled by every role's dashboard
			queueRoutes.GET("/status/:gurujiId", queueHandler.GetStatus)

			// Manual join for coordinators handling walk-ups at the desk
			queueRoutes.POST("/join", middleware.RoleAuthMiddleware(models.RoleCoordinator, models.RoleAdmin), queueHandler.JoinQueue)

			queueRoutes.DELETE("/entries/:id", queueHandler.LeaveQueue) // Devotee leaving, or staff removing
			queueRoutes.POST("/entries/:id/start", middleware.RoleAuthMiddleware(models.RoleGuruji, models.RoleCoordinator, models.RoleAdmin), queueHandler.StartConsultation)
			queueRoutes.POST("/entries/:id/complete", middleware.RoleAuthMiddleware(models.RoleGuruji, models.RoleCoordinator, models.RoleAdmin), queueHandler.CompleteConsultation)
		}

		// Consultation session routes
		consultationRoutes := private.Group("/consultations")
		{
			consultationRoutes.GET("", consultationHandler.GetSessionsForUser) // Role-aware listing in handler
			consultationRoutes.GET("/:id", consultationHandler.GetSessionByID)
			consultationRoutes.PATCH("/:id", middleware.RoleAuthMiddleware(models.RoleGuruji, models.RoleAdmin), consultationHandler.UpdateSession)

			// Prescriptions attach to the active session
			consultationRoutes.POST("/:id/remedies", middleware.RoleAuthMiddleware(models.RoleGuruji, models.RoleAdmin), remedyHandler.Prescribe)
			consultationRoutes.GET("/:id/remedies", remedyHandler.GetRemediesForSession)
		}

		// Remedy template catalog
		templateRoutes := private.Group("/remedy-templates")
		{
			templateRoutes.GET("", remedyHandler.GetTemplates)
			templateRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleGuruji, models.RoleAdmin), remedyHandler.CreateTemplate)
			templateRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleGuruji, models.RoleAdmin), remedyHandler.UpdateTemplate)
		}

		// Notification routes
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotificationsForUser)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkNotificationAsRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
