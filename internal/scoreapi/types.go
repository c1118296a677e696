package scoreapi

import (
	"time"

	"github.com/animica-labs/poies/internal/scoring"
)

// Config holds the HTTP server settings.
type Config struct {
	Address       string
	BodySizeLimit int
	ReadTimeout   time.Duration
}

// AllocationRequest carries a raw metric matrix plus optional overrides of
// the policy defaults. Zero values defer to the loaded policy.
type AllocationRequest struct {
	Matrix      [][]float64 `json:"matrix"`
	Directions  []int8      `json:"directions,omitempty"`
	Weights     []float64   `json:"weights,omitempty"`
	Aggregation string      `json:"aggregation,omitempty"`
	CapFraction float64     `json:"capFraction,omitempty"`
	TopK        int         `json:"topK,omitempty"`
}

type AllocationResponse struct {
	Qualities        [][]float64            `json:"qualities"`
	Scores           []float64              `json:"scores"`
	EffectiveWeights []float64              `json:"effectiveWeights"`
	Uncapped         []float64              `json:"uncapped"`
	Capped           []float64              `json:"capped"`
	Fairness         scoring.FairnessReport `json:"fairness"`
}

type FairnessRequest struct {
	Values []float64 `json:"values"`
	TopK   int       `json:"topK"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
