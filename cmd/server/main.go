package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/afero"

	"github.com/anon381/Movie-Search-App/internal/auth"
	"github.com/anon381/Movie-Search-App/internal/config"
	"github.com/anon381/Movie-Search-App/internal/database"
	"github.com/anon381/Movie-Search-App/internal/handler"
	"github.com/anon381/Movie-Search-App/internal/mail"
	appmw "github.com/anon381/Movie-Search-App/internal/middleware"
	"github.com/anon381/Movie-Search-App/internal/provider"
	"github.com/anon381/Movie-Search-App/internal/repository"
	"github.com/anon381/Movie-Search-App/internal/search"
	"github.com/anon381/Movie-Search-App/internal/service"
	"github.com/anon381/Movie-Search-App/internal/store"
)

func main() {
	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTKey == "" {
		slog.Error("AUTH_JWT_KEY is required")
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal if unavailable)
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache or lockout", "error", err)
	}

	// Metadata provider
	prov, err := provider.New(cfg.Provider)
	if err != nil {
		slog.Error("failed to initialize provider", "error", err)
		os.Exit(1)
	}
	slog.Info("using metadata provider", "provider", prov.ID())

	// Repositories
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	tokens := repository.NewTokenRepository(db)
	favorites := repository.NewFavoritesRepository(db)
	history := repository.NewHistoryRepository(db)

	// Auth session manager
	lockout := auth.NewRedisLockout(rdb, cfg.Auth.LockoutAttempts, cfg.Auth.LockoutWindow)
	manager := auth.NewManager(users, sessions, tokens, mail.LogMailer{}, lockout, cfg.Auth)

	// Stores and services
	local := store.NewLocalFavorites(afero.NewOsFs(), cfg.Local.Path)
	searchSvc := service.NewSearchService(prov, search.NewCache(), rdb)
	favSvc := service.NewFavoritesService(local, favorites)
	histSvc := service.NewHistoryService(history)

	// Handlers
	searchH := handler.NewSearchHandler(searchSvc, histSvc)
	favH := handler.NewFavoritesHandler(favSvc)
	histH := handler.NewHistoryHandler(histSvc)
	authH := handler.NewAuthHandler(manager)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Movie Search",
		ServerHeader: "Movie-Search",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// API routes
	api := app.Group("/api/v1")
	api.Get("/health", searchH.Health)

	api.Get("/search", appmw.OptionalAuth(manager), searchH.Search)
	api.Get("/movies/:id", searchH.Details)

	api.Get("/favorites", appmw.OptionalAuth(manager), favH.List)
	api.Post("/favorites/toggle", appmw.OptionalAuth(manager), favH.Toggle)

	api.Get("/history", appmw.RequireAuth(manager), histH.List)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authH.SignUp)
	authGroup.Post("/signin", authH.SignIn)
	authGroup.Post("/magiclink", authH.MagicLink)
	authGroup.Post("/magiclink/consume", authH.ConsumeMagicLink)
	authGroup.Post("/confirm", authH.Confirm)
	authGroup.Post("/confirm/resend", authH.ResendConfirmation)
	authGroup.Post("/password/reset-request", authH.RequestPasswordReset)
	authGroup.Post("/password/reset", authH.ResetPassword)
	authGroup.Post("/refresh", authH.Refresh)
	authGroup.Post("/signout", appmw.RequireAuth(manager), authH.SignOut)
	authGroup.Get("/session", authH.Session)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutting down movie search service...")
		_ = app.Shutdown()
	}()

	// Start server
	addr := ":" + cfg.Port
	slog.Info("starting movie search service", "addr", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
