package consensus

import "fmt"

// ProofClass is the closed taxonomy of service proofs a candidate block can
// carry. Verification of the proofs themselves happens upstream; by the time
// rows reach the evaluator they are just metric values tagged with a class.
type ProofClass uint8

const (
	ProofHash ProofClass = iota
	ProofCompute
	ProofQuantum
	ProofStorage
	ProofVDF
)

func (c ProofClass) String() string {
	switch c {
	case ProofHash:
		return "hash"
	case ProofCompute:
		return "compute"
	case ProofQuantum:
		return "quantum"
	case ProofStorage:
		return "storage"
	case ProofVDF:
		return "vdf"
	}
	return fmt.Sprintf("proof(%d)", uint8(c))
}

func ParseProofClass(s string) (ProofClass, error) {
	switch s {
	case "hash":
		return ProofHash, nil
	case "compute":
		return ProofCompute, nil
	case "quantum":
		return ProofQuantum, nil
	case "storage":
		return ProofStorage, nil
	case "vdf":
		return ProofVDF, nil
	}
	return 0, fmt.Errorf("unknown proof class %q", s)
}

// ProofRow is one entity's already-extracted metric values plus the class of
// the proof they came from. Column order follows the policy metric order.
type ProofRow struct {
	Entity  string     `json:"entity"`
	Class   ProofClass `json:"class"`
	Metrics []float64  `json:"metrics"`
}

// Candidate is a block acceptance candidate: the rows to score and the
// caller-supplied threshold. The evaluator never chooses theta itself.
type Candidate struct {
	BlockID    string     `json:"blockId"`
	Epoch      uint64     `json:"epoch"`
	ThetaMicro int64      `json:"thetaMicro"`
	Rows       []ProofRow `json:"rows"`
}

// EntityScore is the per-entity breakdown of an evaluation.
type EntityScore struct {
	Entity        string     `json:"entity"`
	Class         ProofClass `json:"class"`
	GammaMicro    int64      `json:"gammaMicro"`
	ClampedMicro  int64      `json:"clampedMicro"`
	ClassCapMicro int64      `json:"classCapMicro,omitempty"`
}

// Outcome reports the integer acceptance comparison and its inputs.
type Outcome struct {
	BlockID       string        `json:"blockId"`
	ScoreMicro    int64         `json:"scoreMicro"`
	ThetaMicro    int64         `json:"thetaMicro"`
	Accepted      bool          `json:"accepted"`
	DistanceMicro int64         `json:"distanceMicro"`
	PerEntity     []EntityScore `json:"perEntity"`
}
