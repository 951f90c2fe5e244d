// Package server contains the HTTP handlers and page rendering for Maker Boards.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"makerboards/internal/auth"
	"makerboards/internal/cache"
	"makerboards/internal/config"
	"makerboards/internal/database"
	"makerboards/internal/forms"
	"makerboards/internal/mail"
	"makerboards/internal/middleware"
	"makerboards/internal/models"
	"makerboards/internal/repository"
	"makerboards/internal/service"
	"makerboards/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	loginURL = "/accounts/login/"

	// CSRFFieldName is the hidden form field carrying the CSRF token.
	CSRFFieldName = "csrfmiddlewaretoken"
	csrfLocal     = "csrf"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *auth.SessionManager
	blacklist      *cache.SessionBlacklist
	mailer         mail.Sender
	userRepo       repository.UserRepository
	boardRepo      repository.BoardRepository
	topicRepo      repository.TopicRepository
	accountService *service.AccountService
	boardService   *service.BoardService
	app            *fiber.App
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional: without it sessions cannot be revoked early and rate limits fail open.
	cache.InitRedis(cfg.RedisURL)

	mailer, err := mail.NewSender(cfg)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("mail sender: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), mailer), nil
}

// NewServerWithDeps wires a server around already-open resources. rdb may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer mail.Sender) *Server {
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	topicRepo := repository.NewTopicRepository(db)

	resets := auth.NewResetTokenGenerator(cfg.SecretKey, time.Duration(cfg.ResetTokenTTLHours)*time.Hour)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          rdb,
		promMiddleware: middleware.InitMetrics("maker-boards"),
		sessions:       auth.NewSessionManager(cfg.SecretKey, time.Duration(cfg.SessionTTLHours)*time.Hour),
		blacklist:      cache.NewSessionBlacklist(rdb),
		mailer:         mailer,
		userRepo:       userRepo,
		boardRepo:      boardRepo,
		topicRepo:      topicRepo,
		accountService: service.NewAccountService(userRepo, resets, mailer, cfg.SiteURL),
		boardService:   service.NewBoardService(boardRepo, topicRepo, userRepo),
	}
}

// NewApp builds the Fiber app with the embedded template engine and the HTML error page.
func (s *Server) NewApp() *fiber.App {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")
	engine.AddFunc("fieldType", forms.FieldType)
	engine.AddFunc("inputClass", forms.InputClass)
	engine.AddFunc("date", func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	})

	app := fiber.New(fiber.Config{
		AppName:      "Maker Boards",
		Views:        engine,
		ViewsLayout:  "layouts/base",
		ErrorHandler: s.errorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	s.app = app
	return app
}

// errorHandler renders unhandled errors as an HTML page with the matching status.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Server Error (500)"

	var fiberErr *fiber.Error
	var appErr *models.AppError
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.As(err, &appErr):
		switch appErr.Code {
		case models.CodeNotFound:
			code = fiber.StatusNotFound
			message = "Not Found"
		case models.CodeValidation:
			code = fiber.StatusBadRequest
			message = appErr.Message
		case models.CodeUnauthorized:
			return c.Redirect(middleware.LoginRedirectURL(loginURL, c.OriginalURL()), fiber.StatusFound)
		}
	}
	if code == fiber.StatusNotFound {
		message = "Not Found"
	}

	ctx := c.UserContext()
	if code >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(ctx, "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err,
		)
	}

	c.Status(code)
	if renderErr := s.render(c, "errors/error", fiber.Map{
		"title":   http.StatusText(code),
		"status":  code,
		"message": message,
	}); renderErr != nil {
		middleware.Logger.ErrorContext(ctx, "failed to render error page", "error", renderErr)
		return c.Status(code).SendString(message)
	}
	return nil
}

// SetupMiddleware configures all middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == "/health/live" || c.Path() == "/health/ready"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))

	// Every POST form carries the token in a hidden field
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:" + CSRFFieldName,
		CookieName:     "csrftoken",
		CookieSameSite: "Lax",
		CookieSecure:   s.config.IsProduction(),
		Expiration:     12 * time.Hour,
		ContextKey:     csrfLocal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.WarnContext(c.UserContext(), "csrf check failed", "path", c.Path(), "error", err)
			return fiber.NewError(fiber.StatusForbidden, "CSRF verification failed. Request aborted.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	var revocations middleware.RevocationChecker
	if s.redis != nil {
		revocations = s.blacklist
	}
	app.Use(middleware.Session(s.sessions, s.userRepo, revocations))

	app.Get("/", s.Home)

	boards := app.Group("/boards")
	boards.Get("/:id/", s.BoardTopics)
	boards.Get("/:id/new/", s.NewTopic)
	boards.Post("/:id/new/", middleware.RateLimit(s.redis, 20, time.Minute, "new_topic"), s.NewTopic)

	accounts := app.Group("/accounts")
	accounts.Get("/signup/", s.Signup)
	accounts.Post("/signup/", middleware.RateLimit(s.redis, 5, time.Hour, "signup"), s.Signup)
	accounts.Get("/login/", s.Login)
	accounts.Post("/login/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	accounts.Get("/logout/", s.Logout)
	accounts.Post("/logout/", s.Logout)

	accounts.Get("/reset/", s.PasswordReset)
	accounts.Post("/reset/", middleware.RateLimit(s.redis, 5, time.Hour, "password_reset"), s.PasswordReset)
	accounts.Get("/reset/done/", s.PasswordResetDone)
	accounts.Get("/reset/complete/", s.PasswordResetComplete)
	accounts.Get("/reset/:uid/:token/", s.PasswordResetConfirm)
	accounts.Post("/reset/:uid/:token/", s.PasswordResetConfirm)

	protected := accounts.Group("/password_change", middleware.LoginRequired(loginURL))
	protected.Get("/", s.PasswordChange)
	protected.Post("/", s.PasswordChange)
	protected.Get("/done/", s.PasswordChangeDone)
}

// LivenessCheck reports whether the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "up",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck reports whether the database (and Redis, when configured) can serve traffic.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{}
	status := "up"

	if err := database.Ping(ctx, s.db); err != nil {
		checks["database"] = "down"
		status = "down"
	} else {
		checks["database"] = "up"
	}

	if s.redis == nil {
		checks["redis"] = "disabled"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		// Sessions and rate limits fail open without Redis
		checks["redis"] = "down"
	} else {
		checks["redis"] = "up"
	}

	code := fiber.StatusOK
	if status != "up" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

// Start listens on the configured port until the app is shut down.
func (s *Server) Start() error {
	if s.app == nil {
		return errors.New("server app is not initialized")
	}
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and its dependencies
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Fiber shutdown error: %v", err)
		}
	}

	if err := database.Close(s.db); err != nil {
		log.Printf("Database close error: %v", err)
	}

	switch {
	case s.redis == nil:
	case s.redis == cache.GetClient():
		if err := cache.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	default:
		if err := s.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			log.Printf("Redis close error: %v", err)
		}
	}
	return nil
}
