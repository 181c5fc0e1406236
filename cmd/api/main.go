package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	gpubsub "cloud.google.com/go/pubsub"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"vendora/internal/adapter/api"
	"vendora/internal/adapter/api/handler"
	apimiddleware "vendora/internal/adapter/api/middleware"
	"vendora/internal/adapter/api/router"
	"vendora/internal/adapter/repository"
	"vendora/internal/domain/service"
	"vendora/internal/infrastructure/firebase"
	"vendora/internal/infrastructure/gemini"
	"vendora/internal/infrastructure/pubsub"
	"vendora/internal/infrastructure/ratelimit"
	"vendora/internal/infrastructure/storage"
	"vendora/internal/infrastructure/websocket"
	"vendora/internal/usecase"
	"vendora/pkg/config"
	"vendora/pkg/logger"
	"vendora/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is configured from cfg, so this one goes to stderr
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		log.Info("using service account from environment")
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case cfg.ServiceAccountPath != "":
		if _, err := os.Stat(cfg.ServiceAccountPath); err != nil {
			log.Fatal("service account file is not readable", zap.String("path", cfg.ServiceAccountPath), zap.Error(err))
		}
		log.Info("using service account file", zap.String("path", cfg.ServiceAccountPath))
		opts = append(opts, option.WithCredentialsFile(cfg.ServiceAccountPath))
	default:
		log.Info("using application default credentials")
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatal("failed to initialize firebase", zap.Error(err))
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatal("failed to initialize firebase auth", zap.Error(err))
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatal("failed to create firestore client", zap.Error(err))
	}
	defer firestoreClient.Close()

	var files service.ProductImageStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, log, opts...)
		if err != nil {
			log.Fatal("failed to initialize cloud storage", zap.Error(err))
		}
		defer storageClient.Close()
		files = storageClient
	} else {
		log.Warn("STORAGE_BUCKET not set, product image uploads are disabled")
	}

	var publisher usecase.NotificationPublisher
	if cfg.NotificationsTopic != "" {
		pubsubClient, err := gpubsub.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			log.Fatal("failed to create pubsub client", zap.Error(err))
		}
		defer pubsubClient.Close()

		notificationPublisher, err := pubsub.NewNotificationPublisher(pubsubClient.Topic(cfg.NotificationsTopic))
		if err != nil {
			log.Fatal("failed to create notification publisher", zap.Error(err))
		}
		defer notificationPublisher.Stop()
		publisher = notificationPublisher
	}

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)
	var devTokens *firebase.DevTokenIssuer
	if cfg.IsDevelopment() && cfg.JWTSecret != "" {
		devTokens = firebase.NewDevTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
		firebaseAuthClient.WithDevTokens(devTokens)
		log.Warn("development tokens are enabled")
	}

	var payments service.PaymentGatewayService
	switch cfg.PaymentProvider {
	case "stripe":
		payments = service.NewStripePaymentService(cfg.StripeSecretKey, cfg.PaymentCurrency, log)
	default:
		payments = service.NewSimulatedPaymentService(cfg.PaymentSimulatedDelay, log)
	}

	var assistant service.SupportAssistant
	if cfg.GeminiApiKey != "" {
		geminiAssistant, err := gemini.NewAssistant(ctx, cfg.GeminiApiKey, cfg.GeminiModel, cfg.LLMTimeout, log)
		if err != nil {
			log.Fatal("failed to create support assistant", zap.Error(err))
		}
		assistant = geminiAssistant
	} else {
		log.Warn("GEMINI_API_KEY not set, support chat uses the keyword classifier only")
	}

	wsManager := websocket.NewManager(log)
	wsManager.Start(ctx)

	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine(ctx)

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	productRepo := repository.NewFirestoreProductRepository(firestoreClient)
	userCartRepo := repository.NewFirestoreCartRepository(firestoreClient)
	guestCartRepo := repository.NewFirestoreGuestCartRepository(firestoreClient)
	orderRepo := repository.NewFirestoreOrderRepository(firestoreClient)
	checkoutRepo := repository.NewFirestoreCheckoutRepository(firestoreClient)
	ticketRepo := repository.NewFirestoreTicketRepository(firestoreClient)
	sessionRepo := repository.NewFirestoreSupportSessionRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, wsManager, publisher, log)
	cartUseCase := usecase.NewCartUseCase(userCartRepo, guestCartRepo, productRepo, cfg.CartSessionTTL, log)
	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient, cartUseCase, log)
	productUseCase := usecase.NewProductUseCase(productRepo, userRepo, files, log)
	checkoutUseCase := usecase.NewCheckoutUseCase(cartUseCase, checkoutRepo, payments, notificationUseCase, cfg.PaymentTimeout, cfg.PaymentCurrency, log)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, notificationUseCase, log)
	ticketUseCase := usecase.NewTicketUseCase(ticketRepo, sessionRepo, userRepo, notificationUseCase, wsManager, log)
	supportUseCase := usecase.NewSupportUseCase(sessionRepo, ticketRepo, ticketUseCase, assistant, wsManager, cfg.SupportHandoffDelay, log)

	handler.Setup(authUseCase, productUseCase, cartUseCase, checkoutUseCase, orderUseCase, supportUseCase, ticketUseCase, notificationUseCase)
	handler.SetupHealthHandler(cfg.Environment)
	if devTokens != nil {
		handler.SetupDevTokenHandler(devTokens, userRepo)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Validator = api.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(apimiddleware.RequestLogger(log))
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient, userRepo, log)
	rateLimitMiddleware := apimiddleware.NewRateLimitMiddleware(limiter, log)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.AllowedOrigins, log)

	router.Setup(e, authMiddleware, rateLimitMiddleware)
	router.SetupDevRouter(e, cfg.Environment)
	router.SetupWebSocketRouter(e, wsHandler, authMiddleware)

	go func() {
		log.Info("starting server", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	supportUseCase.Wait()
}
