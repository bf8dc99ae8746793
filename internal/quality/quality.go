// Package quality assigns a composite quality rating to a capsule at
// creation time. The scoring policy sits behind the Scorer interface so a
// real metric can replace the stub without touching the service.
package quality

import (
	"math"
	"math/rand/v2"

	"github.com/wanyview/capsuled/internal/capsule"
)

// Scorer rates a capsule draft on a [0, 100] scale. Invoked exactly once
// per creation.
type Scorer interface {
	Score(draft *capsule.Capsule) float64
}

// DATM sub-dimension ranges. The names carry no semantic weight; this is a
// placeholder heuristic, not a real quality metric.
const (
	truthMin, truthMax         = 70.0, 95.0
	goodnessMin, goodnessMax   = 65.0, 90.0
	aestheticMin, aestheticMax = 60.0, 85.0
	intellectMin, intellectMax = 70.0, 95.0
)

// DATMScorer is the stub scoring policy: four sub-dimension values drawn
// independently from fixed ranges, averaged, rounded to 2 decimal places.
// The result never depends on capsule content.
type DATMScorer struct{}

// NewDATMScorer creates the stub scorer.
func NewDATMScorer() *DATMScorer {
	return &DATMScorer{}
}

// Score implements Scorer.
func (s *DATMScorer) Score(_ *capsule.Capsule) float64 {
	truth := uniform(truthMin, truthMax)
	goodness := uniform(goodnessMin, goodnessMax)
	aesthetic := uniform(aestheticMin, aestheticMax)
	intellect := uniform(intellectMin, intellectMax)

	return Round2((truth + goodness + aesthetic + intellect) / 4)
}

// uniform returns a random float64 in [lo, hi).
func uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

// Round2 rounds to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
