package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"calmme-backend-go/internal/api"
	"calmme-backend-go/internal/cache"
	"calmme-backend-go/internal/config"
	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/identity"
	"calmme-backend-go/internal/middleware"
	"calmme-backend-go/internal/scheduler"
	"calmme-backend-go/pkg/mailer"
	"calmme-backend-go/pkg/messagequeue"
)

func main() {
	// --- 1. Initialize logger ---
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load configuration ---
	// A .env file is optional; real environments set variables directly.
	if err := godotenv.Load(); err == nil {
		zapLogger.Info("Loaded environment from .env file")
	}
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load application configuration", zap.Error(err))
	}

	// --- 3. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		zapLogger.Fatal("Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("Firestore or Firebase Auth client is nil after initialization")
	}
	defer firestoreClient.Close()
	zapLogger.Info("Firebase Admin SDK initialized")

	// --- 4. Initialize repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	moodRepo := db.NewFirestoreMoodRepository(firestoreClient)
	psychRepo := db.NewFirestorePsychologistRepository(firestoreClient)
	scheduleRepo := db.NewFirestoreScheduleRepository(firestoreClient)
	apptRepo := db.NewFirestoreAppointmentRepository(firestoreClient)
	consultRepo := db.NewFirestoreConsultationRepository(firestoreClient)
	paymentRepo := db.NewFirestorePaymentRepository(firestoreClient)
	subRepo := db.NewFirestoreSubscriptionRepository(firestoreClient)
	eventRepo := db.NewFirestorePaymentEventRepository(firestoreClient)
	auditRepo := db.NewFirestoreAuditRepository(firestoreClient)

	// --- 5. Optional infrastructure: Redis, RabbitMQ, SMTP ---
	// Each degrades to a no-op when not configured.
	directoryCache := cache.NewNoopCache()
	if appConfig.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Warn("Redis unavailable; running without directory cache", zap.Error(err))
		} else {
			directoryCache = redisCache
			zapLogger.Info("Redis cache connected", zap.String("address", appConfig.RedisAddress))
		}
	}

	var queue messagequeue.MessageQueue = messagequeue.NewNoopQueue()
	if appConfig.RabbitMQURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL})
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable; payment events will not be published", zap.Error(err))
		} else {
			queue = mq
			defer mq.Close()
			zapLogger.Info("RabbitMQ connected", zap.String("queue", appConfig.RabbitMQQueue))
		}
	}

	var receiptMailer core.Mailer = mailer.NoopMailer{}
	if appConfig.SMTPHost != "" {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.NewSMTPMailerConfig{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			User:     appConfig.SMTPUser,
			Password: appConfig.SMTPPassword,
			Sender:   appConfig.MailSender,
		})
		if err != nil {
			zapLogger.Warn("SMTP misconfigured; receipt emails disabled", zap.Error(err))
		} else {
			receiptMailer = smtpMailer
			zapLogger.Info("SMTP mailer configured", zap.String("host", appConfig.SMTPHost))
		}
	}

	// --- 6. Initialize services ---
	identityClient := identity.NewClient(appConfig.FirebaseWebAPIKey)
	auditService := core.NewAuditService(auditRepo)
	identityService := core.NewIdentityService(userRepo, identityClient, firebaseAuthClient, auditService, zapLogger)
	moodService := core.NewMoodService(moodRepo, zapLogger)
	consultationService := core.NewConsultationService(psychRepo, scheduleRepo, apptRepo, consultRepo, userRepo, directoryCache, zapLogger)
	billingService := core.NewBillingService(
		userRepo, apptRepo, paymentRepo, subRepo, eventRepo,
		auditService, queue, receiptMailer,
		appConfig.RabbitMQQueue, appConfig.SubscriptionRollover,
		zapLogger,
	)
	assessmentService := core.NewAssessmentService()
	adminService := core.NewAdminService(userRepo, auditService, zapLogger)
	zapLogger.Info("Core services initialized")

	// --- 7. Start the reconciliation scheduler ---
	reconciler := scheduler.NewReconcileScheduler(billingService, zapLogger)
	if err := reconciler.Start(appConfig.ReconcileSchedule); err != nil {
		zapLogger.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
	}
	defer reconciler.Stop()

	// --- 8. Setup Gin HTTP engine and global middleware ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
	} else {
		zapLogger.Warn("CORS middleware skipped: CLIENT_URL is not configured")
	}

	// --- 9. Routes ---
	api.SetupRoutes(
		router,
		zapLogger,
		userRepo,
		identityService,
		moodService,
		consultationService,
		billingService,
		assessmentService,
		adminService,
	)

	// --- 10. Start HTTP server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 11. Graceful shutdown ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully")
}
