// Package scoreapi exposes the scoring engine over HTTP: allocation runs,
// acceptance evaluations, and fairness diagnostics, plus the authenticated
// snapshot relay for providers.
package scoreapi

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/animica-labs/poies/internal/consensus"
	"github.com/animica-labs/poies/internal/policy"
	"github.com/animica-labs/poies/internal/registry"
	"github.com/animica-labs/poies/internal/telemetry"
)

type Server struct {
	app       *fiber.App
	cfg       Config
	policy    *policy.Policy
	evaluator *consensus.Evaluator
	registry  registry.RegistryInterface
	telemetry *telemetry.Telemetry
}

func NewServer(
	cfg Config,
	pol *policy.Policy,
	evaluator *consensus.Evaluator,
	reg registry.RegistryInterface,
	tel *telemetry.Telemetry,
) *Server {
	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		BodyLimit:   cfg.BodySizeLimit,
		ReadTimeout: cfg.ReadTimeout,
	})

	app.Use(recover.New())
	app.Use(ZstdMiddleware())

	s := &Server{
		app:       app,
		cfg:       cfg,
		policy:    pol,
		evaluator: evaluator,
		registry:  reg,
		telemetry: tel,
	}

	app.Get("/healthz", s.handleHealth)
	if tel != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(tel.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")
	api.Post("/allocations", s.handleAllocations)
	api.Post("/acceptance", s.handleAcceptance)
	api.Post("/fairness", s.handleFairness)

	submit := api.Group("/submit", VerifySignatureMiddleware())
	submit.Post("/snapshots", s.handleSnapshotSubmission)

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.app.Listen(s.cfg.Address); err != nil {
			log.Error().Err(err).Msg("server listen failed")
		}
	}()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
