// Package score implements the relevance model: a pure function over
// graph distance, optional semantic similarity, and recency.
package score

import (
	"fmt"
	"math"
	"time"
)

const (
	// recencyHalfLifeDays controls the exponential decay of the recency
	// component: exp(-ageDays / 30).
	recencyHalfLifeDays = 30.0

	// neutralRecency is used when a node has no creation timestamp.
	neutralRecency = 0.5

	// Weights with a semantic similarity available.
	weightDistanceSem = 0.40
	weightSemantic    = 0.35
	weightRecencySem  = 0.25

	// Weights without semantic similarity.
	weightDistance = 0.60
	weightRecency  = 0.40
)

// Components breaks a score into its factors.
type Components struct {
	GraphDistance float64  `json:"graph_distance"`
	SemanticSim   *float64 `json:"semantic_sim,omitempty"`
	Recency       float64  `json:"recency"`
}

// Score is a clamped relevance total with its components.
type Score struct {
	Total      float64    `json:"total"` // always in [0,1]
	Components Components `json:"components"`
}

// Input carries everything the model needs. Now is injected so results
// are reproducible in tests.
type Input struct {
	Distance            int
	SemanticSim         *float64 // nil when no similarity was computed
	CreatedAt           *int64   // Unix millis; nil when unknown
	EmbeddingsAvailable bool
	Now                 time.Time
}

// ValidateDistance rejects negative distances at the caller boundary.
func ValidateDistance(distance int) error {
	if distance < 0 {
		return fmt.Errorf("distance must be non-negative, got %d", distance)
	}
	return nil
}

// Node computes the relevance score for one node. Pure, no I/O.
//
// distanceScore = 1/(distance+1); recencyScore = exp(-ageDays/30) or a
// neutral 0.5 without a timestamp. With embeddings available and a
// similarity provided the total is 0.4*distance + 0.35*semantic +
// 0.25*recency; otherwise 0.6*distance + 0.4*recency. The total is
// clamped to [0,1].
func Node(in Input) Score {
	distanceScore := 1.0 / float64(in.Distance+1)

	recency := neutralRecency
	if in.CreatedAt != nil {
		ageDays := in.Now.Sub(time.UnixMilli(*in.CreatedAt)).Hours() / 24.0
		if ageDays < 0 {
			ageDays = 0
		}
		recency = math.Exp(-ageDays / recencyHalfLifeDays)
	}

	components := Components{
		GraphDistance: distanceScore,
		Recency:       recency,
	}

	var total float64
	if in.EmbeddingsAvailable && in.SemanticSim != nil {
		sim := *in.SemanticSim
		components.SemanticSim = &sim
		total = weightDistanceSem*distanceScore + weightSemantic*sim + weightRecencySem*recency
	} else {
		total = weightDistance*distanceScore + weightRecency*recency
	}

	return Score{
		Total:      clamp(total, 0, 1),
		Components: components,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
