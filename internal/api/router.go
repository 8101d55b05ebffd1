package api

import (
	"net"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/recordlink/registrar/internal/api/apierr"
	"github.com/recordlink/registrar/internal/api/handler"
	"github.com/recordlink/registrar/internal/api/middleware"
	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
)

// Dependencies are the collaborators the routes are served by.
type Dependencies struct {
	Registration ports.RegistrationService
	Linkage      ports.LinkageService
	Tokens       ports.TokenVerifier
	Publisher    ports.ContentPublisher
	Ledger       ports.LedgerClient
	Records      ports.RecordLedger
	RelinkQueue  ports.RelinkQueue
	Health       *handler.HealthHandler
	// Limiter throttles /auth/*. Nil disables rate limiting.
	Limiter middleware.Limiter
}

// Options tune the HTTP surface.
type Options struct {
	Log zerolog.Logger
	// Debug adds error details to responses.
	Debug      bool
	BodyLimit  string
	CORSOrigin string
	// Metrics installs the request metrics middleware and /metrics. It
	// registers collectors on the default registry, so enable it once per
	// process.
	Metrics bool
	// TrustedProxies are the peers whose X-Forwarded-For is honoured when
	// resolving the client IP. Without any, the peer address is used.
	TrustedProxies []*net.IPNet
}

// clientIPExtractor resolves the address rate limits are keyed on. Forwarding
// headers are ignored unless they arrive through a trusted proxy.
func clientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = clientIPExtractor(opts.TrustedProxies)
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = apierr.NewHTTPErrorHandler(opts.Log, opts.Debug)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(echomiddleware.Secure())
	if opts.CORSOrigin != "" {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     []string{opts.CORSOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}
	if opts.Metrics {
		e.Use(echoprometheus.NewMiddleware("registrar"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Registration)
	contentHandler := handler.NewContentHandler(deps.Publisher)
	ledgerHandler := handler.NewLedgerHandler(deps.Ledger)
	recordHandler := handler.NewRecordHandler(deps.Records)
	adminHandler := handler.NewAdminHandler(deps.Linkage, deps.RelinkQueue)
	authenticated := middleware.Auth(deps.Tokens)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if deps.Limiter != nil {
		auth.Use(middleware.RateLimit(deps.Limiter, "auth", opts.Log))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authenticated)

	// --- Content and ledger ---
	e.POST("/ipfs/upload", contentHandler.Upload, authenticated, middleware.RBAC(domain.RoleAdmin, domain.RoleRegistrar))
	e.GET("/ledger/accounts/:id", ledgerHandler.Lookup, authenticated)

	records := e.Group("/contract", authenticated, middleware.RBAC(domain.RoleAdmin, domain.RoleRegistrar))
	records.POST("/register-criminal", recordHandler.RegisterCriminal)
	records.POST("/add-crime", recordHandler.AddCrime)

	// --- Operator routes ---
	admin := e.Group("/admin", authenticated, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/accounts/unlinked", adminHandler.ListUnlinked)
	admin.POST("/accounts/relink", adminHandler.RelinkBatch)
	admin.POST("/accounts/:id/relink", adminHandler.Relink)

	// --- Health probes and docs (no auth required) ---
	if deps.Health != nil {
		e.GET("/health", deps.Health.Liveness)        // liveness  – is the process alive?
		e.GET("/health/ready", deps.Health.Readiness) // readiness – are dependencies up?
		e.GET("/db-status", deps.Health.DBStatus)
	}
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	return e
}
