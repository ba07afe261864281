package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/cache"
	"rental-backend/internal/config"
	"rental-backend/internal/database"
	"rental-backend/internal/db"
	"rental-backend/internal/handlers"
	"rental-backend/internal/health"
	rhttp "rental-backend/internal/http"
	"rental-backend/internal/middleware"
	"rental-backend/internal/monitoring"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	monitorPort := flag.Int("monitor-port", 9090, "Monitoring dashboard port")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional, reads fall back to the database when it is down
	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (dashboards served uncached)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)

	// Start monitoring dashboard server in background
	go monitoring.NewMonitoringServer(pool, *monitorPort).Start()

	jwtManager := auth.NewJWTManager(cfg)
	clock := timeutil.System

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	propertyRepo := repositories.NewPropertyRepository(pool)
	tenantRepo := repositories.NewTenantRepository(pool)
	leaseRepo := repositories.NewLeaseRepository(pool)
	scheduleRepo := repositories.NewScheduleRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	chequeRepo := repositories.NewChequeRepository(pool)
	gatewayOrderRepo := repositories.NewGatewayOrderRepository(pool)

	// Services
	userService := services.NewUserService(userRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo)
	scheduleService := services.NewScheduleService(scheduleRepo)
	leaseService := services.NewLeaseService(leaseRepo, propertyRepo, scheduleService, clock)
	allocationService := services.NewAllocationService(leaseRepo, paymentRepo, clock)
	chequeService := services.NewChequeService(pool, chequeRepo, paymentRepo, leaseRepo, clock)
	ledgerService := services.NewLedgerService(leaseRepo, scheduleRepo, paymentRepo, clock)
	reportService := services.NewReportService(pool, scheduleRepo, paymentRepo, chequeRepo, leaseRepo, propertyRepo, userRepo, clock)
	backfillService := services.NewBackfillService(chequeRepo, paymentRepo, allocationService, clock)
	gatewayService := services.NewGatewayService(
		cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret,
		gatewayOrderRepo, leaseRepo, allocationService, ledgerService,
	)
	archiveService, err := services.NewArchiveService(context.Background(),
		cfg.Archive.Endpoint, cfg.Archive.AccessKey, cfg.Archive.SecretKey,
		cfg.Archive.Bucket, cfg.Archive.Region, reportService,
	)
	if err != nil {
		log.Fatalf("Failed to initialize archive service: %v", err)
	}

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	authHandler := handlers.NewAuthHandler(userService, totpService)
	userHandler := handlers.NewUserHandler(userService)
	propertyHandler := handlers.NewPropertyHandler(propertyRepo)
	tenantHandler := handlers.NewTenantHandler(tenantRepo)
	leaseHandler := handlers.NewLeaseHandler(leaseService, ledgerService)
	paymentHandler := handlers.NewPaymentHandler(allocationService, reportService)
	chequeHandler := handlers.NewChequeHandler(chequeService, chequeRepo)
	reportHandler := handlers.NewReportHandler(reportService, ledgerService, archiveService)
	gatewayHandler := handlers.NewGatewayHandler(gatewayService)
	backfillHandler := handlers.NewBackfillHandler(backfillService)
	liveHandler := handlers.NewDashboardLiveHandler(reportService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := rhttp.NewRouter(
		authHandler,
		userHandler,
		propertyHandler,
		tenantHandler,
		leaseHandler,
		paymentHandler,
		chequeHandler,
		reportHandler,
		gatewayHandler,
		backfillHandler,
		liveHandler,
		healthHandler,
		authMiddleware,
	)
	handler := corsMiddleware(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
