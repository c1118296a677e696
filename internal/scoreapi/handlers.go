package scoreapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/animica-labs/poies/internal/consensus"
	"github.com/animica-labs/poies/internal/registry"
	"github.com/animica-labs/poies/internal/scoring"
)

func (s *Server) badRequest(c *fiber.Ctx, route string, err error) error {
	if s.telemetry != nil {
		s.telemetry.ObserveRequest(route, fiber.StatusBadRequest)
	}
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Status: "error", Message: err.Error()})
}

func (s *Server) ok(c *fiber.Ctx, route string, body any) error {
	if s.telemetry != nil {
		s.telemetry.ObserveRequest(route, fiber.StatusOK)
	}
	return c.JSON(body)
}

// allocatorFor merges request overrides onto the policy defaults.
func (s *Server) allocatorFor(req AllocationRequest) (*scoring.Allocator, int, error) {
	opts := []scoring.AllocatorOption{}

	normalize := scoring.DefaultNormalizeParams()
	aggregate := scoring.DefaultAggregateParams()
	capping := scoring.DefaultCapParams()
	topK := req.TopK

	if s.policy != nil {
		normalize.Directions = s.policy.Directions()
		normalize.ConstantFill = s.policy.ConstantFill()
		aggregate.Weights = s.policy.Weights()
		capping.Fraction = s.policy.Scoring.CapFraction
		if mode, err := s.policy.AggregationMode(); err == nil {
			aggregate.Mode = mode
		}
		if topK == 0 {
			topK = s.policy.Scoring.TopK
		}
	}

	if req.Directions != nil {
		directions := make([]scoring.Direction, len(req.Directions))
		for i, d := range req.Directions {
			directions[i] = scoring.Direction(d)
		}
		normalize.Directions = directions
	}
	if req.Weights != nil {
		aggregate.Weights = req.Weights
	}
	if req.Aggregation != "" {
		mode, err := scoring.ParseAggregationMode(req.Aggregation)
		if err != nil {
			return nil, 0, err
		}
		aggregate.Mode = mode
	}
	if req.CapFraction != 0 {
		capping.Fraction = req.CapFraction
	}

	opts = append(opts,
		scoring.WithNormalizeParams(normalize),
		scoring.WithAggregateParams(aggregate),
		scoring.WithCapParams(capping),
	)
	return scoring.NewAllocator(opts...), topK, nil
}

func (s *Server) handleAllocations(c *fiber.Ctx) error {
	const route = "/api/v1/allocations"

	var req AllocationRequest
	if err := c.BodyParser(&req); err != nil {
		return s.badRequest(c, route, err)
	}

	matrix, err := scoring.NewMetricMatrix(req.Matrix)
	if err != nil {
		return s.badRequest(c, route, err)
	}

	allocator, topK, err := s.allocatorFor(req)
	if err != nil {
		return s.badRequest(c, route, err)
	}

	result, err := allocator.Allocate(matrix)
	if err != nil {
		return s.badRequest(c, route, err)
	}

	fairness, err := scoring.AnalyzeFairness(result.Capped, topK)
	if err != nil {
		return s.badRequest(c, route, err)
	}
	if s.telemetry != nil {
		s.telemetry.ObserveFairness(fairness)
	}

	return s.ok(c, route, AllocationResponse{
		Qualities:        scoring.MatrixRows(result.Qualities),
		Scores:           result.Scores,
		EffectiveWeights: result.EffectiveWeights,
		Uncapped:         result.Uncapped,
		Capped:           result.Capped,
		Fairness:         fairness,
	})
}

func (s *Server) handleAcceptance(c *fiber.Ctx) error {
	const route = "/api/v1/acceptance"

	if s.evaluator == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Status: "error", Message: "evaluator not configured"})
	}

	var candidate consensus.Candidate
	if err := c.BodyParser(&candidate); err != nil {
		return s.badRequest(c, route, err)
	}

	outcome, err := s.evaluator.Evaluate(candidate)
	if err != nil {
		return s.badRequest(c, route, err)
	}

	return s.ok(c, route, outcome)
}

func (s *Server) handleFairness(c *fiber.Ctx) error {
	const route = "/api/v1/fairness"

	var req FairnessRequest
	if err := c.BodyParser(&req); err != nil {
		return s.badRequest(c, route, err)
	}

	report, err := scoring.AnalyzeFairness(req.Values, req.TopK)
	if err != nil {
		return s.badRequest(c, route, err)
	}

	return s.ok(c, route, report)
}

// handleSnapshotSubmission relays an authenticated provider snapshot to the
// registry. The signature middleware has already vetted the caller.
func (s *Server) handleSnapshotSubmission(c *fiber.Ctx) error {
	const route = "/api/v1/submit/snapshots"

	if s.registry == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Status: "error", Message: "registry not configured"})
	}

	var snapshot registry.MetricSnapshot
	if err := c.BodyParser(&snapshot); err != nil {
		return s.badRequest(c, route, err)
	}

	headers := registry.AuthHeaders{
		ProviderID: c.Get("x-address"),
		Signature:  c.Get("x-signature"),
		Message:    SubmissionMessage(c.Get("x-address"), c.Get("x-timestamp")),
	}

	resp, err := s.registry.SubmitSnapshot(headers, snapshot)
	if err != nil {
		log.Error().Err(err).Str("provider", snapshot.Provider).Msg("snapshot relay failed")
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Status: "error", Message: "registry unavailable"})
	}

	return s.ok(c, route, resp)
}
