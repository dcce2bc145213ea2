package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/middleware"
	"calmme-backend-go/internal/models"
)

// SetupRoutes configures all application routes. Global middleware
// (logging, recovery, CORS) is applied to the router before this is called.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	userRepo db.UserRepository,
	identityService core.IdentityService,
	moodService core.MoodService,
	consultationService core.ConsultationService,
	billingService core.BillingService,
	assessmentService core.AssessmentService,
	adminService core.AdminService,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("Firebase Auth client is not initialized; routes cannot be set up")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, logger)
	adminOnly := middleware.RequireRole(userRepo, logger, models.RoleAdmin)

	authHandler := NewAuthHandler(identityService, logger)
	userHandler := NewUserHandler(identityService, logger)
	moodHandler := NewMoodHandler(moodService, logger)
	consultationHandler := NewConsultationHandler(consultationService, logger)
	billingHandler := NewBillingHandler(billingService, logger)
	assessmentHandler := NewAssessmentHandler(assessmentService, logger)
	adminHandler := NewAdminHandler(adminService, logger)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/logout", authMW.VerifyToken(), authHandler.Logout)
			authGroup.POST("/resend-verification", authMW.VerifyToken(), authHandler.ResendVerification)
			authGroup.GET("/verification-status", authMW.VerifyToken(), authHandler.VerificationStatus)
		}

		usersGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			usersGroup.GET("/me", userHandler.GetMe)
			usersGroup.PATCH("/me", userHandler.UpdateMe)
			usersGroup.PUT("/me/email", userHandler.UpdateEmail)
			usersGroup.PUT("/me/password", userHandler.UpdatePassword)
		}

		moodsGroup := apiV1.Group("/moods", authMW.VerifyToken())
		{
			moodsGroup.POST("", moodHandler.SaveMood)
			moodsGroup.GET("/history", moodHandler.GetHistory)
			moodsGroup.GET("/week", moodHandler.GetWeek)
			moodsGroup.GET("/streak", moodHandler.GetStreak)
			moodsGroup.GET("/stats", moodHandler.GetStats)
		}

		psychologistsGroup := apiV1.Group("/psychologists", authMW.VerifyToken())
		{
			psychologistsGroup.GET("", consultationHandler.ListPsychologists)
			psychologistsGroup.GET("/:psychologistId", consultationHandler.GetPsychologist)
			psychologistsGroup.GET("/:psychologistId/schedules", consultationHandler.GetSchedules)
		}

		apiV1.POST("/appointments", authMW.VerifyToken(), consultationHandler.CreateAppointment)

		consultationsGroup := apiV1.Group("/consultations", authMW.VerifyToken())
		{
			consultationsGroup.POST("", consultationHandler.CreateConsultation)
			consultationsGroup.GET("", consultationHandler.ListConsultations)
			consultationsGroup.PATCH("/:consultationId/status", consultationHandler.UpdateConsultationStatus)
		}

		billingGroup := apiV1.Group("/billing", authMW.VerifyToken())
		{
			billingGroup.GET("/subscription-status", billingHandler.GetSubscriptionStatus)
			billingGroup.GET("/pending-appointments", billingHandler.GetPendingAppointments)
			billingGroup.POST("/payments/consultation", billingHandler.CreateConsultationPayment)
			billingGroup.POST("/subscriptions", billingHandler.CreateSubscription)
			billingGroup.PUT("/payments/:paymentId/method", billingHandler.UpdatePaymentMethod)
			billingGroup.POST("/payments/:paymentId/complete", billingHandler.CompletePayment)
			billingGroup.GET("/payments", billingHandler.GetPaymentHistory)
		}

		assessmentGroup := apiV1.Group("/assessment", authMW.VerifyToken())
		{
			assessmentGroup.GET("/questions", assessmentHandler.GetQuestions)
			assessmentGroup.POST("/score", assessmentHandler.Submit)
		}

		adminGroup := apiV1.Group("/admin", authMW.VerifyToken(), adminOnly)
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PUT("/users/:userId/role", adminHandler.UpdateUserRole)
			adminGroup.POST("/users/:userId/disable", adminHandler.DisableUser)
			adminGroup.POST("/users/:userId/enable", adminHandler.EnableUser)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "CalmMe backend is healthy."})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
