package server

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"fisiqia-be/internal/bootstrap"
	"fisiqia-be/internal/config"
	"fisiqia-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return serverutils.WriteError(ctx, container.Logger, err)
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[HTTP] ${time} ${status} ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	// Routes
	registerRoutes(app, container)

	// Static + SPA fallback, after the API so API paths always win
	registerStatic(app, cfg.App.StaticDir)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// registerRoutes mounts every controller twice: at the root, where the
// bundled client calls it, and under /api for reverse proxies.
func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	for _, r := range []fiber.Router{app, api} {
		c.HealthController.RegisterRoutes(r)
		c.QuestionController.RegisterRoutes(r)
		c.ReportController.RegisterRoutes(r)
	}
}

func registerStatic(app *fiber.App, dir string) {
	if dir == "" {
		return
	}

	app.Static("/", dir, fiber.Static{Index: "index.html"})

	index := filepath.Join(dir, "index.html")
	app.Get("/*", func(ctx *fiber.Ctx) error {
		if ctx.Path() == "/api" || strings.HasPrefix(ctx.Path(), "/api/") {
			return fiber.ErrNotFound
		}
		if _, err := os.Stat(index); err != nil {
			return fiber.ErrNotFound
		}
		return ctx.SendFile(index)
	})
}
