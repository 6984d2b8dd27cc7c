// Package server exposes make lookups as JSON over HTTP.
package server

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"carlens/internal/config"
	"carlens/internal/domain"
	"carlens/internal/eventbus"
	"carlens/internal/session"
)

// Fetcher runs both lookups of one cycle and applies each outcome
type Fetcher interface {
	Fetch(ctx context.Context, token domain.Token, carMake string, apply func(domain.BranchEvent))
	Kind() domain.RecordsKind
}

// Server serves /api/lookup, /api/makes and /health
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	fetcher Fetcher
	bus     eventbus.EventBus
	log     *zap.Logger
}

// New builds the fiber app. bus may be nil.
func New(cfg *config.Config, fetcher Fetcher, bus eventbus.EventBus, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		fetcher: fetcher,
		bus:     bus,
		log:     logger.Named("server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "carlens",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)

	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api")
	if cfg.Server.RateLimit > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        cfg.Server.RateLimit,
			Expiration: time.Duration(cfg.Server.RateWindow),
		}))
	}
	api.Get("/makes", s.handleMakes)
	api.Get("/lookup", s.handleLookup)
	api.Get("/lookup/:make", s.handleLookup)

	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)),
		zap.Error(err))
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleMakes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"makes":   s.cfg.Makes,
		"records": s.fetcher.Kind(),
	})
}

// handleLookup runs one full cycle on a private session and returns the
// settled presentation state
func (s *Server) handleLookup(c *fiber.Ctx) error {
	input := c.Query("make")
	if raw := c.Params("make"); raw != "" {
		decoded, err := url.PathUnescape(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed make")
		}
		input = decoded
	}

	store := session.NewStore(s.bus, s.log)
	defer store.Close()

	cycle, err := store.Begin(c.UserContext(), input)
	if err != nil {
		if session.IsRejected(err) {
			return c.Status(fiber.StatusBadRequest).JSON(store.Snapshot().Presentation())
		}
		return err
	}

	s.fetcher.Fetch(cycle.Ctx, cycle.Token, cycle.Manufacturer, func(e domain.BranchEvent) {
		store.Apply(e)
	})

	state := store.Snapshot()
	s.log.Info("lookup settled",
		zap.String("cycle", cycle.ID),
		zap.String("make", cycle.Manufacturer),
		zap.Stringer("outcome", state.Outcome()),
		zap.Int("records", len(state.Records)))

	return c.JSON(state.Presentation())
}
