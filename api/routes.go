package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/mrsingh-rishi/voicescribe/auth"
	"github.com/mrsingh-rishi/voicescribe/config"
	"github.com/mrsingh-rishi/voicescribe/stt"
)

// BodyLimit caps uploads; a long recording at 16 kHz mono is ~1.9 MB per minute.
const BodyLimit = 25 << 20

// NewApp builds the proxy server. forwarder may be nil, in which case the
// Groq client is built from cfg.
func NewApp(cfg config.Server, forwarder Forwarder) *fiber.App {
	if forwarder == nil {
		forwarder = stt.NewGroqClient(cfg.GroqAPIKey, cfg.GroqAPIURL, cfg.Model)
	}

	app := fiber.New(fiber.Config{
		AppName:               "voicescribe",
		BodyLimit:             BodyLimit,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	apiGroup := app.Group("/api")
	if cfg.JWTSecret != "" {
		apiGroup.Use(auth.New(cfg.JWTSecret))
	}

	h := &TranscriptionHandler{APIKey: cfg.GroqAPIKey, Forwarder: forwarder}
	apiGroup.Post("/transcription", h.Handle)

	return app
}
