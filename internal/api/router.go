package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/psiborg/task-manager/docs"
	"github.com/psiborg/task-manager/internal/api/handler"
	"github.com/psiborg/task-manager/internal/api/middleware"
	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
	"github.com/psiborg/task-manager/internal/core/service"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth   ports.AuthService
	Tasks  ports.TaskService
	Users  ports.UserService
	Guard  middleware.Authenticator
	Cache  *service.ResponseCache
	Checks map[string]handler.DependencyCheck
	Log    zerolog.Logger
	// Registry receives the HTTP metrics; nil selects the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "taskmanager",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	taskHandler := handler.NewTaskHandler(d.Tasks, d.Cache)
	userHandler := handler.NewUserHandler(d.Users, d.Cache)
	session := middleware.Session(d.Guard)
	writers := middleware.RBAC(domain.RoleManager, domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/psiborg/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)

	// --- User routes ---
	// Middleware is attached per route so unknown paths still render 404.
	users := e.Group("/psiborg/user")
	users.GET("/getUserProfile", userHandler.Profile, session)
	users.GET("/getAllProfiles", userHandler.Profiles, session)

	// --- Task routes ---
	tasks := e.Group("/psiborg/task")
	tasks.POST("/create", taskHandler.Create, session, writers)
	tasks.PUT("/update/:id", taskHandler.Update, session, writers)
	tasks.DELETE("/delete/:id", taskHandler.Delete, session, writers)
	tasks.GET("/getAllTask", taskHandler.List, session)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
