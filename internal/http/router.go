package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rental-backend/internal/handlers"
	"rental-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	propertyHandler *handlers.PropertyHandler,
	tenantHandler *handlers.TenantHandler,
	leaseHandler *handlers.LeaseHandler,
	paymentHandler *handlers.PaymentHandler,
	chequeHandler *handlers.ChequeHandler,
	reportHandler *handlers.ReportHandler,
	gatewayHandler *handlers.GatewayHandler,
	backfillHandler *handlers.BackfillHandler,
	liveHandler *handlers.DashboardLiveHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)

	// Public API routes - Authentication
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/login/totp", authHandler.VerifyTOTP).Methods("POST")

	// Public API routes - Gateway (webhook is authenticated by its HMAC signature)
	r.HandleFunc("/api/gateway/status", gatewayHandler.GetStatus).Methods("GET")
	r.HandleFunc("/api/gateway/webhook", gatewayHandler.Webhook).Methods("POST")

	// Protected API routes - Session and 2FA
	authAPI := r.PathPrefix("/api/auth").Subrouter()
	authAPI.Use(authMiddleware.Authenticate)
	authAPI.HandleFunc("/me", authHandler.Me).Methods("GET")
	authAPI.HandleFunc("/totp/setup", authHandler.SetupTOTP).Methods("POST")
	authAPI.HandleFunc("/totp/enable", authHandler.EnableTOTP).Methods("POST")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.Use(authMiddleware.RequireAdmin)
	usersAPI.HandleFunc("", userHandler.CreateUser).Methods("POST")
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")

	// Protected API routes - Properties and units
	propertiesAPI := r.PathPrefix("/api/properties").Subrouter()
	propertiesAPI.Use(authMiddleware.Authenticate)
	propertiesAPI.HandleFunc("", propertyHandler.CreateProperty).Methods("POST")
	propertiesAPI.HandleFunc("", propertyHandler.ListProperties).Methods("GET")
	propertiesAPI.HandleFunc("/{id}", propertyHandler.GetProperty).Methods("GET")
	propertiesAPI.HandleFunc("/{id}/units", propertyHandler.CreateUnit).Methods("POST")
	propertiesAPI.HandleFunc("/{id}/units", propertyHandler.ListUnits).Methods("GET")

	// Protected API routes - Tenants
	tenantsAPI := r.PathPrefix("/api/tenants").Subrouter()
	tenantsAPI.Use(authMiddleware.Authenticate)
	tenantsAPI.HandleFunc("", tenantHandler.CreateTenant).Methods("POST")
	tenantsAPI.HandleFunc("", tenantHandler.ListTenants).Methods("GET")
	tenantsAPI.HandleFunc("/{id}", tenantHandler.GetTenant).Methods("GET")

	// Protected API routes - Leases and ledgers
	leasesAPI := r.PathPrefix("/api/leases").Subrouter()
	leasesAPI.Use(authMiddleware.Authenticate)
	leasesAPI.HandleFunc("", leaseHandler.CreateLease).Methods("POST")
	leasesAPI.HandleFunc("", leaseHandler.ListLeases).Methods("GET")
	leasesAPI.HandleFunc("/{id}", leaseHandler.GetLease).Methods("GET")
	leasesAPI.HandleFunc("/{id}/terminate", leaseHandler.TerminateLease).Methods("PATCH")
	leasesAPI.HandleFunc("/{id}/schedule", leaseHandler.GetSchedule).Methods("GET")
	leasesAPI.HandleFunc("/{id}/schedule/regenerate", authMiddleware.RequireFinanceAccess(http.HandlerFunc(leaseHandler.RegenerateSchedule)).ServeHTTP).Methods("POST")
	leasesAPI.HandleFunc("/{id}/ledger", leaseHandler.GetLedger).Methods("GET")
	leasesAPI.HandleFunc("/{lease_id}/payments", paymentHandler.ListByLease).Methods("GET")
	leasesAPI.HandleFunc("/{lease_id}/cheques", chequeHandler.ListByLease).Methods("GET")

	// Protected API routes - Payments (finance access required to record)
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", authMiddleware.RequireFinanceAccess(http.HandlerFunc(paymentHandler.CreatePayment)).ServeHTTP).Methods("POST")
	paymentsAPI.HandleFunc("/{id}", paymentHandler.GetPayment).Methods("GET")
	paymentsAPI.HandleFunc("/{id}/matches", paymentHandler.GetMatches).Methods("GET")
	paymentsAPI.HandleFunc("/{id}/receipt", paymentHandler.GetReceipt).Methods("GET")

	// Protected API routes - Cheques (finance access required to mutate)
	chequesAPI := r.PathPrefix("/api/cheques").Subrouter()
	chequesAPI.Use(authMiddleware.Authenticate)
	chequesAPI.HandleFunc("", authMiddleware.RequireFinanceAccess(http.HandlerFunc(chequeHandler.RegisterCheque)).ServeHTTP).Methods("POST")
	chequesAPI.HandleFunc("/upcoming", chequeHandler.ListUpcoming).Methods("GET")
	chequesAPI.HandleFunc("/{id}", chequeHandler.GetCheque).Methods("GET")
	chequesAPI.HandleFunc("/{id}/status", authMiddleware.RequireFinanceAccess(http.HandlerFunc(chequeHandler.TransitionCheque)).ServeHTTP).Methods("PUT")
	chequesAPI.HandleFunc("/{id}/timeline", chequeHandler.GetTimeline).Methods("GET")

	// Protected API routes - Gateway orders (finance access required)
	gatewayAPI := r.PathPrefix("/api/gateway").Subrouter()
	gatewayAPI.Use(authMiddleware.Authenticate)
	gatewayAPI.HandleFunc("/orders", authMiddleware.RequireFinanceAccess(http.HandlerFunc(gatewayHandler.CreateOrder)).ServeHTTP).Methods("POST")

	// Protected API routes - Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/dashboard", reportHandler.GetDashboard).Methods("GET")
	reportsAPI.HandleFunc("/monthly", reportHandler.GetMonthlySummary).Methods("GET")
	reportsAPI.HandleFunc("/quarterly", reportHandler.GetQuarterlySummary).Methods("GET")
	reportsAPI.HandleFunc("/overdue", reportHandler.GetOverdue).Methods("GET")
	reportsAPI.HandleFunc("/portfolio", authMiddleware.RequireRole("manager", "admin")(http.HandlerFunc(reportHandler.GetPortfolio)).ServeHTTP).Methods("GET")
	reportsAPI.HandleFunc("/statements/csv", reportHandler.GetStatementCSV).Methods("GET")
	reportsAPI.HandleFunc("/statements/pdf", reportHandler.GetStatementPDF).Methods("GET")
	reportsAPI.HandleFunc("/statements/bulk", authMiddleware.RequireRole("manager", "admin")(http.HandlerFunc(reportHandler.GetBulkStatements)).ServeHTTP).Methods("GET")
	reportsAPI.HandleFunc("/statements/archive", authMiddleware.RequireFinanceAccess(http.HandlerFunc(reportHandler.ArchiveStatement)).ServeHTTP).Methods("POST")

	// Protected API routes - Reconciliation backfill (admin only)
	backfillAPI := r.PathPrefix("/api/backfill").Subrouter()
	backfillAPI.Use(authMiddleware.Authenticate)
	backfillAPI.Use(authMiddleware.RequireAdmin)
	backfillAPI.HandleFunc("", backfillHandler.Run).Methods("POST")

	// Live dashboard over websocket
	liveAPI := r.PathPrefix("/api/dashboard/live").Subrouter()
	liveAPI.Use(authMiddleware.Authenticate)
	liveAPI.HandleFunc("", liveHandler.Serve).Methods("GET")

	// Health endpoint (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
