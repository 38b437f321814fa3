package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clinicworks/ehr-system/docs"
	"github.com/clinicworks/ehr-system/internal/api/handler"
	"github.com/clinicworks/ehr-system/internal/api/middleware"
	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
	"github.com/clinicworks/ehr-system/internal/core/service"
)

// Dependencies carries everything the router needs to build its handlers.
type Dependencies struct {
	Logger zerolog.Logger
	Store  ports.RecordStore
	Tokens *service.TokenCodec

	// AuditRecorder receives one entry per successful audited request.
	AuditRecorder ports.AuditRecorder

	// RateLimits backs the login and API limiters. Nil disables rate limiting.
	RateLimits ports.RateLimitStore
	LoginLimit middleware.RateLimitConfig
	APILimit   middleware.RateLimitConfig

	Cookie         handler.CookieConfig
	AllowedOrigins []string
	BodyLimit      string

	// ReadinessChecks are probed by GET /api/health/ready in addition to the store.
	ReadinessChecks map[string]func(ctx context.Context) error

	// EnableMetrics registers the request metrics middleware and /metrics.
	// Request metrics register collectors globally, so enable it once per process.
	EnableMetrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.Logger(deps.Logger))
	e.Use(middleware.Recovery(deps.Logger))
	e.Use(echomiddleware.Secure())
	if len(deps.AllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           int((12 * time.Hour).Seconds()),
		}))
	}
	if deps.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(deps.BodyLimit))
	}
	if deps.EnableMetrics {
		e.Use(echoprometheus.NewMiddleware("ehr"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Dependencies ---
	store := deps.Store
	patientService := service.NewPatientService(store.Patients, store.Encounters, store.Prescriptions, deps.Logger)
	encounterService := service.NewEncounterService(store.Patients, store.Encounters, deps.Logger)
	prescriptionService := service.NewPrescriptionService(store.Encounters, store.Prescriptions, deps.Logger)
	auditService := service.NewAuditService(store.Audit)
	authService := service.NewAuthService(store.Users, deps.Tokens, deps.Logger)

	authHandler := handler.NewAuthHandler(authService, deps.Cookie)
	patientHandler := handler.NewPatientHandler(patientService)
	encounterHandler := handler.NewEncounterHandler(encounterService)
	prescriptionHandler := handler.NewPrescriptionHandler(prescriptionService)
	auditHandler := handler.NewAuditHandler(auditService)

	checks := map[string]func(ctx context.Context) error{"store": store.Ping}
	for name, check := range deps.ReadinessChecks {
		checks[name] = check
	}
	healthHandler := handler.NewHealthHandler(checks)

	session := middleware.Session(deps.Tokens)
	var loginLimit, apiLimit echo.MiddlewareFunc = passthrough, passthrough
	if deps.RateLimits != nil {
		loginLimit = middleware.RateLimit(deps.RateLimits, "login", deps.LoginLimit, middleware.IPKey)
		apiLimit = middleware.RateLimit(deps.RateLimits, "api", deps.APILimit, middleware.IdentityKey)
	}

	// protected prepends the session and API limiter to a route's own chain.
	protected := func(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append([]echo.MiddlewareFunc{session, apiLimit}, mw...)
	}
	allStaff := middleware.RequireRoles(domain.RoleDoctor, domain.RoleNurse, domain.RoleAdmin)
	clinicians := middleware.RequireRoles(domain.RoleDoctor, domain.RoleNurse)
	doctors := middleware.RequireRoles(domain.RoleDoctor)
	admins := middleware.RequireRoles(domain.RoleAdmin)
	audit := func(action domain.AuditAction, entity string) echo.MiddlewareFunc {
		return middleware.Audit(deps.AuditRecorder, action, entity)
	}

	api := e.Group("/api")

	// --- Health probes (no auth required) ---
	api.GET("/health", healthHandler.Liveness)
	api.GET("/health/ready", healthHandler.Readiness)

	// --- Auth routes ---
	api.POST("/auth/login", authHandler.Login, loginLimit)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me, protected()...)

	// --- Clinical records ---
	api.POST("/patients", patientHandler.Create,
		protected(allStaff, audit(domain.ActionCreate, domain.EntityPatient))...)
	api.GET("/patients", patientHandler.List, protected(allStaff)...)
	api.GET("/patients/:id", patientHandler.Get,
		protected(allStaff, audit(domain.ActionRead, domain.EntityPatient))...)
	api.GET("/patients/:id/records", patientHandler.Records,
		protected(allStaff, audit(domain.ActionRead, domain.EntityPatientRecords))...)
	api.POST("/encounters", encounterHandler.Create,
		protected(clinicians, audit(domain.ActionCreate, domain.EntityEncounter))...)
	api.POST("/prescriptions", prescriptionHandler.Create,
		protected(doctors, audit(domain.ActionCreate, domain.EntityPrescription))...)

	// --- Administration ---
	api.GET("/audit-logs", auditHandler.List, protected(admins)...)

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
