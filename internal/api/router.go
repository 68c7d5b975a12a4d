package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/telcocrm/crm-system/docs"
	"github.com/telcocrm/crm-system/internal/api/handler"
	"github.com/telcocrm/crm-system/internal/api/middleware"
	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
	"github.com/telcocrm/crm-system/internal/core/service"
	"github.com/telcocrm/crm-system/internal/infrastructure/config"
	crmmongo "github.com/telcocrm/crm-system/internal/infrastructure/db/mongo"
	crmredis "github.com/telcocrm/crm-system/internal/infrastructure/db/redis"
	"github.com/telcocrm/crm-system/internal/infrastructure/upstream"
)

// sections per role tree. Order mirrors the web client's navigation menus.
var (
	superadminSections = []string{
		"dashboard", "users", "system-settings", "audit-logs", "reports",
		"customers", "invoices", "support", "network", "sales", "plans", "subscription",
	}
	adminSections = []string{
		"dashboard", "customers", "invoices", "support", "network",
		"sales", "plans", "subscription", "users",
	}
	userSections = []string{
		"dashboard", "billing", "support", "services", "reports",
	}
)

// NewRouter builds the Echo instance with every route registered: the
// navigation plane (role trees behind redirect guards) and the data plane
// (/api, JWT-protected).
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("crm"))

	// --- Repositories ---
	userRepo := crmmongo.NewUserRepository(db)
	customerRepo := crmmongo.NewCustomerRepository(db)
	planRepo := crmmongo.NewPlanRepository(db)
	subscriptionRepo := crmmongo.NewSubscriptionRepository(db)
	invoiceRepo := crmmongo.NewInvoiceRepository(db)
	ticketRepo := crmmongo.NewTicketRepository(db)
	auditRepo := crmmongo.NewAuditRepository(db)

	sessionStore := crmredis.NewSessionStore(rdb, cfg.SessionTTL)
	provisionGuard := crmredis.NewProvisionGuard(rdb)
	resetTokens := crmredis.NewResetTokenStore(rdb)

	// --- Services ---
	syncClient := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Token, cfg.Upstream.Timeout, log)
	authService := service.NewAuthService(userRepo, sessionStore, resetTokens, cfg.JWTSecret, cfg.SessionTTL, log)
	resolver := service.NewSessionResolver(sessionStore, log)
	provisionService := service.NewProvisionService(sessionStore, userRepo, customerRepo, provisionGuard, audit, log)
	customerService := service.NewCustomerService(customerRepo, syncClient, log)
	ticketService := service.NewTicketService(ticketRepo, log)
	dashboardService := service.NewDashboardService(customerRepo, subscriptionRepo, invoiceRepo, ticketRepo, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, provisionService, audit, cfg.SessionTTL, log)
	customerHandler := handler.NewCustomerHandler(customerService, audit)
	planHandler := handler.NewPlanHandler(planRepo, audit)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionRepo, planRepo, customerRepo, audit)
	invoiceHandler := handler.NewInvoiceHandler(invoiceRepo, customerRepo, audit)
	ticketHandler := handler.NewTicketHandler(ticketService, audit)
	userHandler := handler.NewUserHandler(userRepo, audit)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, provisionService, auditRepo, log)
	navHandler := handler.NewNavHandler(resolver)

	// --- Health probes and operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/logout", authHandler.Logout)
	e.GET("/login", navHandler.Login)

	// --- Navigation plane: role trees behind redirect guards ---
	registerRoleTree(e, navHandler, resolver, domain.RoleSuperAdmin, superadminSections)
	registerRoleTree(e, navHandler, resolver, domain.RoleAdmin, adminSections)
	registerRoleTree(e, navHandler, resolver, domain.RoleUser, userSections)

	// Broken role values persisted by old clients land on the basic dashboard.
	e.GET("/null/*", navHandler.LegacyRole)
	e.GET("/null", navHandler.LegacyRole)
	e.GET("/undefined/*", navHandler.LegacyRole)
	e.GET("/undefined", navHandler.LegacyRole)

	e.GET("/", navHandler.Root)
	e.RouteNotFound("/*", navHandler.Fallback)

	// --- Data plane: /api, JWT-protected ---
	authMW := middleware.Auth(cfg.JWTSecret)
	api := e.Group("/api", authMW)

	asUser := middleware.RequireRole(domain.RoleUser)
	asAdmin := middleware.RequireRole(domain.RoleAdmin)
	asSuperAdmin := middleware.RequireRole(domain.RoleSuperAdmin)

	// Customers
	api.GET("/customers/all/", customerHandler.List, asAdmin)
	api.GET("/customers/:id/", customerHandler.Get, asUser)
	api.POST("/customers/create/", customerHandler.Create, asAdmin)
	api.PUT("/customers/update/:id/", customerHandler.Update, asAdmin)
	api.DELETE("/customers/delete/:id/", customerHandler.Delete, asAdmin)

	// Plans
	api.GET("/plans/", planHandler.List, asUser)
	api.GET("/plans/:id/", planHandler.Get, asUser)
	api.POST("/plans/create/", planHandler.Create, asAdmin)
	api.PUT("/plans/update/:id/", planHandler.Update, asAdmin)
	api.DELETE("/plans/delete/:id/", planHandler.Delete, asAdmin)

	// Subscriptions
	api.GET("/sub/", subscriptionHandler.List, asUser)
	api.GET("/sub/:id/", subscriptionHandler.Get, asUser)
	api.POST("/sub/create/", subscriptionHandler.Create, asAdmin)
	api.PUT("/sub/update/:id/", subscriptionHandler.Update, asAdmin)
	api.DELETE("/sub/delete/:id/", subscriptionHandler.Delete, asAdmin)

	// Invoices
	api.GET("/invoices/", invoiceHandler.List, asUser)
	api.GET("/invoices/:id/", invoiceHandler.Get, asUser)
	api.POST("/invoices/create/", invoiceHandler.Create, asAdmin)
	api.POST("/invoices/:id/pay/", invoiceHandler.MarkPaid, asUser)
	api.DELETE("/invoices/delete/:id/", invoiceHandler.Delete, asAdmin)

	// Support tickets
	api.GET("/tickets/", ticketHandler.List, asUser)
	api.GET("/tickets/:ticket_id/", ticketHandler.Get, asUser)
	api.POST("/tickets/create/", ticketHandler.Create, asUser)
	api.PUT("/tickets/:ticket_id/status/", ticketHandler.UpdateStatus, asAdmin)
	api.POST("/tickets/:ticket_id/messages/", ticketHandler.AddMessage, asUser)

	// User administration
	api.GET("/users/", userHandler.List, asAdmin)
	api.GET("/users/:id/", userHandler.Get, asAdmin)
	api.PUT("/users/:id/update/", userHandler.Update, asSuperAdmin)
	api.DELETE("/users/:id/delete/", userHandler.Delete, asSuperAdmin)

	// Dashboards and audit trail
	api.GET("/dashboard/admin/", dashboardHandler.AdminStats, asAdmin)
	api.GET("/dashboard/me/", dashboardHandler.UserStats, asUser)
	api.GET("/dashboard/user/:id/", dashboardHandler.UserStatsByID, asAdmin)
	api.GET("/audit-logs/", dashboardHandler.AuditLog, asSuperAdmin)

	return e
}

// registerRoleTree mounts the page endpoints of one role tree behind its
// redirect guard.
func registerRoleTree(e *echo.Echo, nav *handler.NavHandler, resolver ports.SessionResolver, role string, sections []string) {
	tree := e.Group("/"+role, middleware.RedirectGuard(resolver, role))
	for _, section := range sections {
		tree.GET("/"+section, nav.Page(role, section))
	}
}
