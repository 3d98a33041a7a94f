package server

import (
	"github.com/compsocial/compsocial-server/internal/config"
	"github.com/compsocial/compsocial-server/internal/handlers"
	"github.com/compsocial/compsocial-server/internal/middlewares"
	"github.com/compsocial/compsocial-server/internal/routes"
	"github.com/compsocial/compsocial-server/internal/token"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

// New initializes the Fiber application with config, middlewares, and routes.
func New(cfg *config.Config, h *handlers.Handler, tokens *token.Manager, logger *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	})

	app.Use(cors.New())
	app.Use(middlewares.RequestLogger(logger))

	routes.Setup(app, h, tokens)

	return app
}
